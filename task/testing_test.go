package task

import (
	"io"
	"strings"
	"time"
)

// scriptConsole replays canned answers and records everything written.
type scriptConsole struct {
	answers []string
	prompts []string
	lines   []string
}

func newScriptConsole(answers ...string) *scriptConsole {
	return &scriptConsole{answers: answers}
}

func (c *scriptConsole) ReadLine(prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if len(c.answers) == 0 {
		return "", io.EOF
	}
	answer := c.answers[0]
	c.answers = c.answers[1:]
	return answer, nil
}

func (c *scriptConsole) Println(line string) {
	c.lines = append(c.lines, line)
}

func (c *scriptConsole) output() string {
	return strings.Join(c.lines, "\n")
}

// stepClock advances by step on every Now call.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	current := c.now
	c.now = c.now.Add(c.step)
	return current
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...any) {
	l.lines = append(l.lines, format)
}
