package task

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Defaults applied by New.
const (
	DefaultSeparator    = "---------------------------------------"
	DefaultRepeatPrompt = "Do you want to repeat this task? "
	DefaultArgsPrompt   = "Send arguments"

	// RepeatAnswer is the only reply to the repeat prompt that repeats.
	RepeatAnswer = "1"
)

// Func is the function a task invokes. Tasks without arguments receive an
// empty Args.
type Func func(args Args) (any, error)

// Task is one named, invocable console action.
type Task struct {
	Name   string
	Fn     Func
	Repeat bool
	Detail bool
	Args   []Arg

	Separator    string
	RepeatPrompt string
	ArgsPrompt   string
}

// Option adjusts a Task. Options only touch the field they name.
type Option func(*Task)

// WithName sets the display name.
func WithName(name string) Option {
	return func(t *Task) { t.Name = name }
}

// WithRepeat controls whether the task offers to run again after success.
func WithRepeat(repeat bool) Option {
	return func(t *Task) { t.Repeat = repeat }
}

// WithDetail adds the arguments echo and elapsed time to the output.
func WithDetail(detail bool) Option {
	return func(t *Task) { t.Detail = detail }
}

// WithArgs replaces the argument descriptors.
func WithArgs(args ...Arg) Option {
	return func(t *Task) { t.Args = append([]Arg(nil), args...) }
}

// WithSeparator sets the line printed before and after a run.
func WithSeparator(separator string) Option {
	return func(t *Task) { t.Separator = separator }
}

// WithRepeatPrompt sets the repeat question.
func WithRepeatPrompt(prompt string) Option {
	return func(t *Task) { t.RepeatPrompt = prompt }
}

// WithArgsPrompt sets the heading printed before argument prompts.
func WithArgsPrompt(prompt string) Option {
	return func(t *Task) { t.ArgsPrompt = prompt }
}

// New builds a task with default presentation settings and repeat enabled.
// fn may be any shape accepted by Wrap.
func New(name string, fn any, opts ...Option) (*Task, error) {
	wrapped, err := Wrap(fn)
	if err != nil {
		return nil, err
	}
	t := newDefault(wrapped)
	t.Name = name
	t.Set(opts...)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustNew panics if New fails.
func MustNew(name string, fn any, opts ...Option) *Task {
	t, err := New(name, fn, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func newDefault(fn Func) *Task {
	return &Task{
		Fn:           fn,
		Repeat:       true,
		Separator:    DefaultSeparator,
		RepeatPrompt: DefaultRepeatPrompt,
		ArgsPrompt:   DefaultArgsPrompt,
	}
}

// Set applies opts in place and returns t.
func (t *Task) Set(opts ...Option) *Task {
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Clone returns a shallow copy with its own argument slice.
func (t *Task) Clone() *Task {
	clone := *t
	clone.Args = append([]Arg(nil), t.Args...)
	return &clone
}

// Validate checks that the task can be run.
func (t *Task) Validate() error {
	if err := t.validateRunnable(); err != nil {
		return err
	}
	for _, arg := range t.Args {
		if err := arg.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateRunnable checks name and function. Argument descriptors are
// checked by GetArgs once the header is printed.
func (t *Task) validateRunnable() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrNameRequired
	}
	if t.Fn == nil {
		return fmt.Errorf("%s: %w", t.Name, ErrNoFunc)
	}
	return nil
}

// GetArgs prompts for every argument in order.
func (t *Task) GetArgs(console Console) (Args, error) {
	var args Args
	for _, arg := range t.Args {
		if err := arg.Validate(); err != nil {
			return Args{}, err
		}
	}
	if len(t.Args) > 0 && t.ArgsPrompt != "" {
		console.Println(t.ArgsPrompt)
	}
	for _, arg := range t.Args {
		value, err := arg.Collect(console)
		if err != nil {
			return Args{}, err
		}
		args.set(arg.Name, value)
	}
	return args, nil
}

// GetResult invokes the task function and formats the result block.
func (t *Task) GetResult(args Args, clock Clock) (string, error) {
	if clock == nil {
		clock = SystemClock
	}
	if !t.Detail {
		result, err := t.invoke(args)
		if err != nil {
			return "", err
		}
		return "Result - " + result, nil
	}
	start := clock.Now()
	result, err := t.invoke(args)
	elapsed := clock.Now().Sub(start)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Args - %s\nResult - %s\nTime - %s seconds", args, result, formatSeconds(elapsed)), nil
}

func (t *Task) invoke(args Args) (result string, err error) {
	if t.Fn == nil {
		return "", ErrNoFunc
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task function panicked: %v", r)
		}
	}()
	value, err := t.Fn(args)
	if err != nil {
		return "", err
	}
	return render(value)
}

func formatSeconds(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// Run prints the task header and loops through prompting, invoking and
// reporting until the user declines to repeat. Input errors are printed and
// the arguments asked for again; anything else aborts the run with *Error.
func (t *Task) Run(rc *RunContext) error {
	if rc == nil || rc.Console == nil {
		return &Error{Task: t.Name, Err: errors.New("run context has no console")}
	}
	if err := t.validateRunnable(); err != nil {
		return &Error{Task: t.Name, Err: err}
	}
	rc = rc.forRun()
	console := rc.Console
	rc.logf("task %q started", t.Name)

	console.Println(t.Separator)
	console.Println(rc.header(t.Name))

	for iteration := 1; ; iteration++ {
		args, err := t.GetArgs(console)
		phase := PhasePrompting
		var result string
		if err == nil {
			phase = PhaseInvoking
			result, err = t.GetResult(args, rc.Clock)
		}
		if err != nil {
			var inputErr *InputError
			if errors.As(err, &inputErr) {
				rc.logf("task %q iteration %d: input rejected: %v", t.Name, iteration, inputErr)
				console.Println(inputErr.Error())
				continue
			}
			rc.logf("task %q aborted while %s: %v", t.Name, phase, err)
			return &Error{Task: t.Name, Phase: phase, Err: err}
		}
		console.Println(result)

		if !t.Repeat {
			break
		}
		answer, err := console.ReadLine(t.RepeatPrompt)
		if err != nil {
			rc.logf("task %q aborted while %s: %v", t.Name, PhaseReporting, err)
			return &Error{Task: t.Name, Phase: PhaseReporting, Err: err}
		}
		if answer != RepeatAnswer {
			break
		}
	}

	console.Println(t.Separator)
	rc.logf("task %q finished", t.Name)
	return nil
}
