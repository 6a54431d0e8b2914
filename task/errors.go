package task

import (
	"errors"
	"fmt"
)

// Definition errors. These are fatal: a run that hits one is aborted.
var (
	// ErrInvalidArg indicates a malformed argument descriptor.
	ErrInvalidArg = errors.New("invalid argument descriptor")

	// ErrNameRequired indicates a task was defined without a display name.
	ErrNameRequired = errors.New("task name is required")

	// ErrNoFunc indicates a task has nothing to invoke.
	ErrNoFunc = errors.New("task function is required")

	// ErrUnsupportedTarget indicates the decorator was applied to something
	// that is neither a callable nor a *Task.
	ErrUnsupportedTarget = errors.New("decorator works with a function or *Task value")

	// ErrUnrenderableResult indicates the task function returned a value that
	// has no display form.
	ErrUnrenderableResult = errors.New("task function must always return a string-convertible value")
)

// InputError is a recoverable error caused by bad end-user input. The run
// loop prints its message and asks for the arguments again.
type InputError struct {
	Message string
}

// DefaultInputMessage is used when an InputError carries no message.
const DefaultInputMessage = "Input error, try again"

// NewInputError builds an InputError with a formatted message.
func NewInputError(format string, args ...any) *InputError {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

func (e *InputError) Error() string {
	if e == nil || e.Message == "" {
		return DefaultInputMessage
	}
	return e.Message
}

// IsInputError reports whether err is, or wraps, an InputError.
func IsInputError(err error) bool {
	var inputErr *InputError
	return errors.As(err, &inputErr)
}

// Phase names the step of a run in which a fatal error occurred.
type Phase string

const (
	PhasePrompting Phase = "prompting"
	PhaseInvoking  Phase = "invoking"
	PhaseReporting Phase = "reporting"
)

// Error is a fatal task failure carrying the owning task's name.
type Error struct {
	Task  string
	Phase Phase
	Err   error
}

func (e *Error) Error() string {
	if e.Phase != "" {
		return fmt.Sprintf("in %s (%s): %v", e.Task, e.Phase, e.Err)
	}
	return fmt.Sprintf("in %s: %v", e.Task, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
