package task

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Console is the line-oriented input/output capability a task runs against.
type Console interface {
	// ReadLine writes prompt without a trailing newline and returns the next
	// input line with its line ending removed.
	ReadLine(prompt string) (string, error)
	// Println writes one output line.
	Println(line string)
}

// LineConsole implements Console over a reader and a writer.
type LineConsole struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole wraps r and w. Typical use is NewConsole(os.Stdin, os.Stdout).
func NewConsole(r io.Reader, w io.Writer) *LineConsole {
	return &LineConsole{in: bufio.NewReader(r), out: w}
}

// ReadLine implements Console.
func (c *LineConsole) ReadLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(c.out, prompt)
	}
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return trimLineEnding(line), nil
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return trimLineEnding(line), nil
}

// Println implements Console.
func (c *LineConsole) Println(line string) {
	fmt.Fprintln(c.out, line)
}

func trimLineEnding(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// Clock supplies monotonic timestamps for elapsed-time reporting.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// Logger receives task lifecycle events. *logging.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...any)
}
