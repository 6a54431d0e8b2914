package task

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"
)

func constant(v any) Func {
	return func(Args) (any, error) { return v, nil }
}

func TestNewAppliesDefaults(t *testing.T) {
	task, err := New("Hello", func() string { return "hi" })
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !task.Repeat || task.Detail {
		t.Fatalf("unexpected defaults repeat=%v detail=%v", task.Repeat, task.Detail)
	}
	if task.Separator != DefaultSeparator || task.RepeatPrompt != DefaultRepeatPrompt || task.ArgsPrompt != DefaultArgsPrompt {
		t.Fatalf("unexpected prompt defaults: %+v", task)
	}
}

func TestNewRejectsInvalidDefinitions(t *testing.T) {
	if _, err := New("", constant("x")); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("empty name error = %v", err)
	}
	if _, err := New("X", 42); !errors.Is(err, ErrUnsupportedTarget) {
		t.Fatalf("non-callable error = %v", err)
	}
	if _, err := New("X", nil); !errors.Is(err, ErrNoFunc) {
		t.Fatalf("nil fn error = %v", err)
	}
	if _, err := New("X", constant("x"), WithArgs(Single("", Int(), "x"))); !errors.Is(err, ErrInvalidArg) {
		t.Fatalf("bad arg error = %v", err)
	}
}

func TestGetResultPlain(t *testing.T) {
	task := MustNew("Plain", constant("ok"))
	got, err := task.GetResult(Args{}, nil)
	if err != nil {
		t.Fatalf("get result: %v", err)
	}
	if got != "Result - ok" {
		t.Fatalf("GetResult = %q, want %q", got, "Result - ok")
	}
}

func TestGetResultDetail(t *testing.T) {
	task := MustNew("Triple", func(a Args) (any, error) {
		x, err := a.Int("x")
		return x * 3, err
	}, WithDetail(true))
	clock := &stepClock{now: time.Unix(0, 0), step: 1500 * time.Millisecond}
	got, err := task.GetResult(NewArgs("x", 3), clock)
	if err != nil {
		t.Fatalf("get result: %v", err)
	}
	want := "Args - x - 3\nResult - 9\nTime - 1.5 seconds"
	if got != want {
		t.Fatalf("GetResult = %q, want %q", got, want)
	}
}

func TestGetResultDetailSystemClock(t *testing.T) {
	task := MustNew("Now", constant(1), WithDetail(true))
	got, err := task.GetResult(NewArgs("x", 3), SystemClock)
	if err != nil {
		t.Fatalf("get result: %v", err)
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 3 || lines[0] != "Args - x - 3" || lines[1] != "Result - 1" {
		t.Fatalf("unexpected detail block %q", got)
	}
	seconds := strings.TrimSuffix(strings.TrimPrefix(lines[2], "Time - "), " seconds")
	value, err := strconv.ParseFloat(seconds, 64)
	if err != nil || value < 0 {
		t.Fatalf("time line %q is not a non-negative number", lines[2])
	}
}

func TestGetResultPassesEmptyArgs(t *testing.T) {
	var seen Args
	task := MustNew("Probe", func(a Args) (any, error) {
		seen = a
		return "ok", nil
	})
	if _, err := task.GetResult(Args{}, nil); err != nil {
		t.Fatalf("get result: %v", err)
	}
	if seen.Len() != 0 {
		t.Fatalf("expected no arguments, got %v", seen)
	}
}

type panicky struct{}

func (panicky) String() string { panic("boom") }

func TestGetResultUnrenderable(t *testing.T) {
	task := MustNew("Bad", constant(panicky{}))
	if _, err := task.GetResult(Args{}, nil); !errors.Is(err, ErrUnrenderableResult) {
		t.Fatalf("GetResult error = %v, want ErrUnrenderableResult", err)
	}
}

func TestGetResultRendersAnyValue(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{nil, "Result - <nil>"},
		{struct{ A int }{A: 1}, "Result - {1}"},
		{errors.New("meh"), "Result - meh"},
		{[]int{1, 2}, "Result - [1 2]"},
	}
	for _, tt := range tests {
		task := MustNew("Any", constant(tt.value))
		got, err := task.GetResult(Args{}, nil)
		if err != nil || got != tt.want {
			t.Fatalf("GetResult(%#v) = %q, %v, want %q", tt.value, got, err, tt.want)
		}
	}
}

func TestRunReportsNilResult(t *testing.T) {
	task := MustNew("Nothing", func() any { return nil }, WithRepeat(false))
	console := newScriptConsole()
	if err := task.Run(NewRunContext(console)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(console.output(), "Result - <nil>") {
		t.Fatalf("unexpected output %q", console.output())
	}
}

func TestGetArgsCollectsInOrder(t *testing.T) {
	task := MustNew("Collect", constant("ok"), WithArgs(
		Single("count", Int(), "count"),
		List("tags", "tags", ",", String()),
	))
	console := newScriptConsole("4", "a,b")
	args, err := task.GetArgs(console)
	if err != nil {
		t.Fatalf("get args: %v", err)
	}
	if got, _ := args.Int("count"); got != 4 {
		t.Fatalf("count = %d", got)
	}
	if names := args.Names(); len(names) != 2 || names[0] != "count" || names[1] != "tags" {
		t.Fatalf("names = %v", names)
	}
	if len(console.prompts) != 2 || console.prompts[0] != "count: " || console.prompts[1] != "tags :" {
		t.Fatalf("prompts = %q", console.prompts)
	}
	if len(console.lines) != 1 || console.lines[0] != DefaultArgsPrompt {
		t.Fatalf("expected args heading, got %q", console.lines)
	}
}

func TestGetArgsRejectsMalformedDescriptor(t *testing.T) {
	task := MustNew("Broken", constant("ok"))
	task.Args = []Arg{{Name: "x"}}
	console := newScriptConsole("1")
	if _, err := task.GetArgs(console); !errors.Is(err, ErrInvalidArg) {
		t.Fatalf("GetArgs error = %v, want ErrInvalidArg", err)
	}
	if len(console.prompts) != 0 {
		t.Fatalf("malformed descriptor must fail before prompting, got %q", console.prompts)
	}
}

func TestRunNoArgsNoRepeat(t *testing.T) {
	task := MustNew("Plain", constant("ok"), WithRepeat(false))
	console := newScriptConsole()
	if err := task.Run(NewRunContext(console)); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{DefaultSeparator, "Plain", "Result - ok", DefaultSeparator}
	if strings.Join(console.lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("output = %q, want %q", console.lines, want)
	}
	if len(console.prompts) != 0 {
		t.Fatalf("no prompts expected, got %q", console.prompts)
	}
}

func TestRunRepeatsOnAffirmative(t *testing.T) {
	calls := 0
	task := MustNew("Counter", func() any {
		calls++
		return calls
	})
	console := newScriptConsole("1", "1", "no")
	if err := task.Run(NewRunContext(console)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	for _, prompt := range console.prompts {
		if prompt != DefaultRepeatPrompt {
			t.Fatalf("unexpected prompt %q", prompt)
		}
	}
	if !strings.Contains(console.output(), "Result - 3") {
		t.Fatalf("missing third result in %q", console.output())
	}
}

func TestRunRetriesOnInputError(t *testing.T) {
	task := MustNew("Double", func(a Args) (any, error) {
		n, err := a.Int("n")
		return n * 2, err
	}, WithArgs(Single("n", Int(), "number")), WithRepeat(false))
	console := newScriptConsole("abc", "21")
	if err := task.Run(NewRunContext(console)); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := console.output()
	if !strings.Contains(out, `argument "abc" cannot be converted to int`) {
		t.Fatalf("expected input error message, got %q", out)
	}
	if !strings.Contains(out, "Result - 42") {
		t.Fatalf("expected retry result, got %q", out)
	}
	if len(console.prompts) != 2 {
		t.Fatalf("expected two prompts, got %q", console.prompts)
	}
}

func TestRunRetriesWhenFunctionRejectsInput(t *testing.T) {
	attempts := 0
	task := MustNew("Picky", func() (any, error) {
		attempts++
		if attempts == 1 {
			return nil, NewInputError("try a bigger number")
		}
		return "fine", nil
	}, WithRepeat(false))
	console := newScriptConsole()
	if err := task.Run(NewRunContext(console)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(console.output(), "try a bigger number") || attempts != 2 {
		t.Fatalf("expected one retry, attempts=%d output=%q", attempts, console.output())
	}
}

func TestRunWrapsFatalErrors(t *testing.T) {
	cause := errors.New("disk on fire")
	task := MustNew("Explode", func() (any, error) { return nil, cause })
	console := newScriptConsole()
	err := task.Run(NewRunContext(console))
	var taskErr *Error
	if !errors.As(err, &taskErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if taskErr.Task != "Explode" || taskErr.Phase != PhaseInvoking || !errors.Is(err, cause) {
		t.Fatalf("unexpected error %+v", taskErr)
	}
	if !strings.Contains(err.Error(), "Explode") || !strings.Contains(err.Error(), "disk on fire") {
		t.Fatalf("message %q should carry task name and cause", err.Error())
	}
	if strings.Contains(console.output(), "Result") {
		t.Fatalf("no result expected, got %q", console.output())
	}
}

func TestRunWrapsPanics(t *testing.T) {
	task := MustNew("Panic", func() any { panic("bad") })
	err := task.Run(NewRunContext(newScriptConsole()))
	if err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Fatalf("expected panic to surface as error, got %v", err)
	}
}

func TestRunAbortsOnMalformedDescriptor(t *testing.T) {
	task := MustNew("Broken", constant("ok"))
	task.Args = []Arg{{Name: "x"}}
	console := newScriptConsole("1")
	err := task.Run(NewRunContext(console))
	if !errors.Is(err, ErrInvalidArg) {
		t.Fatalf("Run error = %v, want ErrInvalidArg", err)
	}
	var taskErr *Error
	if !errors.As(err, &taskErr) || taskErr.Phase != PhasePrompting {
		t.Fatalf("Run error = %v, want failure while prompting", err)
	}
	want := []string{DefaultSeparator, "Broken"}
	if strings.Join(console.lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("output = %q, want header only %q", console.lines, want)
	}
}

func TestRunRepeatsOnlyOnExactAnswer(t *testing.T) {
	calls := 0
	task := MustNew("Strict", func() any {
		calls++
		return calls
	})
	console := newScriptConsole(" 1 ", "1")
	if err := task.Run(NewRunContext(console)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1: padded answer must not repeat", calls)
	}
}

func TestRunAbortsOnEndOfInput(t *testing.T) {
	task := MustNew("Reader", constant("ok"), WithArgs(Single("x", Int(), "x")))
	err := task.Run(NewRunContext(newScriptConsole("nope")))
	var taskErr *Error
	if !errors.As(err, &taskErr) || taskErr.Phase != PhasePrompting || !errors.Is(err, io.EOF) {
		t.Fatalf("Run error = %v, want EOF while prompting", err)
	}
}

func TestRunRequiresName(t *testing.T) {
	task := &Task{Fn: constant("ok")}
	if err := task.Run(NewRunContext(newScriptConsole())); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("Run error = %v, want ErrNameRequired", err)
	}
}

func TestRunStylesHeaderAndLogs(t *testing.T) {
	logger := &recordingLogger{}
	task := MustNew("Styled", constant("ok"), WithRepeat(false), WithSeparator("=="))
	console := newScriptConsole()
	rc := NewRunContext(console).
		WithLogger(logger).
		WithHeaderStyle(func(s string) string { return "[" + s + "]" })
	if err := task.Run(rc); err != nil {
		t.Fatalf("run: %v", err)
	}
	if console.lines[0] != "==" || console.lines[1] != "[Styled]" {
		t.Fatalf("unexpected header %q", console.lines[:2])
	}
	if len(logger.lines) != 2 {
		t.Fatalf("expected start and finish log lines, got %q", logger.lines)
	}
}

func TestLineConsole(t *testing.T) {
	var out bytes.Buffer
	console := NewConsole(strings.NewReader("first\r\nlast"), &out)
	line, err := console.ReadLine("> ")
	if err != nil || line != "first" {
		t.Fatalf("ReadLine = %q, %v", line, err)
	}
	line, err = console.ReadLine("> ")
	if err != nil || line != "last" {
		t.Fatalf("ReadLine at EOF = %q, %v", line, err)
	}
	if _, err := console.ReadLine("> "); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
	console.Println("done")
	if got := out.String(); got != "> > > done\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestRunOverLineConsole(t *testing.T) {
	var out bytes.Buffer
	task := MustNew("Sum", func(a Args) (any, error) {
		xs, err := a.List("xs")
		if err != nil {
			return nil, err
		}
		total := 0
		for _, x := range xs {
			total += x.(int)
		}
		return total, nil
	}, WithArgs(List("xs", "numbers", ",", Int())))
	console := NewConsole(strings.NewReader("1,2,3\n1\n4,5\n0\n"), &out)
	if err := task.Run(NewRunContext(console)); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Result - 6", "Result - 9", fmt.Sprintf("%s\n", DefaultSeparator)} {
		if !strings.Contains(got, want) {
			t.Fatalf("output %q missing %q", got, want)
		}
	}
}
