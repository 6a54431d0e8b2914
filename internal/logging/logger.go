package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation bounds the size of a log file opened with Open. Zero values use
// lumberjack's defaults (100 MB, keep every backup).
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Logger appends timestamped lines to a writer so failed task runs can be
// inspected after the console session ends.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
	now    func() time.Time
}

// New logs to w.
func New(w io.Writer) *Logger {
	return &Logger{out: w, now: time.Now}
}

// Open creates (or appends to) the log file at path, rotating it once it
// grows past the configured size.
func Open(path string, rotation Rotation) (*Logger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("logging: log path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
	}
	l := New(w)
	l.closer = w
	return l, nil
}

// Close releases the file handle, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Printf writes a single timestamped line.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.out == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	line = strings.TrimRight(line, "\n")
	l.mu.Lock()
	defer l.mu.Unlock()
	timestamp := l.now().Format(time.RFC3339)
	fmt.Fprintf(l.out, "[%s] %s\n", timestamp, line)
}
