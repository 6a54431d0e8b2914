package task

import "github.com/google/uuid"

// RunContext carries the shared runtime dependencies into every task run.
type RunContext struct {
	Console Console
	Clock   Clock
	Log     Logger

	// HeaderStyle decorates the task name line. Nil leaves it plain.
	HeaderStyle func(string) string

	// RunID tags log lines of the current run. Run assigns one when empty.
	RunID string
}

// NewRunContext builds a context around console using the system clock and
// no logger.
func NewRunContext(console Console) *RunContext {
	return &RunContext{Console: console, Clock: SystemClock}
}

// WithClock returns a copy using clock.
func (rc *RunContext) WithClock(clock Clock) *RunContext {
	clone := *rc
	clone.Clock = clock
	return &clone
}

// WithLogger returns a copy logging to log.
func (rc *RunContext) WithLogger(log Logger) *RunContext {
	clone := *rc
	clone.Log = log
	return &clone
}

// WithHeaderStyle returns a copy that decorates task names with style.
func (rc *RunContext) WithHeaderStyle(style func(string) string) *RunContext {
	clone := *rc
	clone.HeaderStyle = style
	return &clone
}

func (rc *RunContext) forRun() *RunContext {
	clone := *rc
	if clone.Clock == nil {
		clone.Clock = SystemClock
	}
	if clone.RunID == "" {
		clone.RunID = uuid.NewString()
	}
	return &clone
}

func (rc *RunContext) logf(format string, args ...any) {
	if rc == nil || rc.Log == nil {
		return
	}
	rc.Log.Printf("run=%s "+format, append([]any{rc.RunID}, args...)...)
}

func (rc *RunContext) header(name string) string {
	if rc.HeaderStyle == nil {
		return name
	}
	return rc.HeaderStyle(name)
}
