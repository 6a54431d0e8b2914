package task

import (
	"fmt"
	"strings"
)

// Decorator turns a callable or an existing *Task into a configured *Task.
type Decorator func(target any) (*Task, error)

// Decorate returns a Decorator applying opts.
//
// Applied to a callable it builds a new task and requires WithName. Applied
// to a *Task it keeps the task's name unless WithName is given, applies opts
// in place and returns the same pointer.
func Decorate(opts ...Option) Decorator {
	return func(target any) (*Task, error) {
		if existing, ok := target.(*Task); ok {
			if existing == nil {
				return nil, ErrUnsupportedTarget
			}
			name := existing.Name
			existing.Set(opts...)
			if strings.TrimSpace(existing.Name) == "" {
				existing.Name = name
			}
			return existing, nil
		}
		fn, err := Wrap(target)
		if err != nil {
			return nil, err
		}
		t := newDefault(fn).Set(opts...)
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("decorator on function must set a name: %w", ErrNameRequired)
		}
		return t, nil
	}
}

// Wrap adapts the supported function shapes to Func.
func Wrap(fn any) (Func, error) {
	switch f := fn.(type) {
	case nil:
		return nil, ErrNoFunc
	case Func:
		if f == nil {
			return nil, ErrNoFunc
		}
		return f, nil
	case func(Args) (any, error):
		if f == nil {
			return nil, ErrNoFunc
		}
		return Func(f), nil
	case func(Args) any:
		if f == nil {
			return nil, ErrNoFunc
		}
		return func(a Args) (any, error) { return f(a), nil }, nil
	case func(Args) string:
		if f == nil {
			return nil, ErrNoFunc
		}
		return func(a Args) (any, error) { return f(a), nil }, nil
	case func(map[string]any) any:
		if f == nil {
			return nil, ErrNoFunc
		}
		return func(a Args) (any, error) { return f(a.Map()), nil }, nil
	case func() (any, error):
		if f == nil {
			return nil, ErrNoFunc
		}
		return func(Args) (any, error) { return f() }, nil
	case func() any:
		if f == nil {
			return nil, ErrNoFunc
		}
		return func(Args) (any, error) { return f(), nil }, nil
	case func() string:
		if f == nil {
			return nil, ErrNoFunc
		}
		return func(Args) (any, error) { return f(), nil }, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrUnsupportedTarget, fn)
	}
}
