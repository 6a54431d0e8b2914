package task

import "fmt"

// render converts a task result into its display string. A result whose
// conversion panics, such as a broken String method, cannot be rendered.
func render(value any) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("%w: %v", ErrUnrenderableResult, r)
		}
	}()
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case error:
		return v.Error(), nil
	}
	return fmt.Sprint(value), nil
}
