// Package convention derives tasks from specially formatted keys such as
// task_send_message__notrepeat__count_int.
//
// A key is the Prefix followed by "__"-separated segments. The first segment
// is the display name in snake case. Every later segment is either a bare
// flag (notrepeat, detail) or an <argument>_<type> pair.
package convention

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kingrea/tasklaunch/task"
)

// Prefix marks keys handled by the parser.
const Prefix = "task_"

const (
	segmentSeparator = "__"
	wordSeparator    = "_"

	flagNotRepeat = "notrepeat"
	flagDetail    = "detail"
)

var (
	// ErrBadSegment indicates a segment with more than one "_".
	ErrBadSegment = errors.New("convention: only two values may be joined by _")

	// ErrUnsupportedType indicates an unknown type tag.
	ErrUnsupportedType = errors.New("convention: unsupported type")

	// ErrMissingPrefix indicates a key that does not start with Prefix.
	ErrMissingPrefix = errors.New("convention: key must start with " + Prefix)
)

// TypeTable maps type tags to coercers.
type TypeTable map[string]task.Coercer

// DefaultTypes returns the built-in tags: int, str and float.
func DefaultTypes() TypeTable {
	return TypeTable{
		"int":   task.Int(),
		"str":   task.String(),
		"float": task.Float(),
	}
}

// Clone copies the table.
func (t TypeTable) Clone() TypeTable {
	out := make(TypeTable, len(t))
	for tag, c := range t {
		out[tag] = c
	}
	return out
}

// Tags returns the sorted type tags.
func (t TypeTable) Tags() []string {
	tags := make([]string, 0, len(t))
	for tag := range t {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// HasPrefix reports whether key uses the naming convention.
func HasPrefix(key string) bool {
	return strings.HasPrefix(key, Prefix)
}

// DisplayName turns a key or snake-case name into its display form:
// "task_send_message__detail" becomes "Send Message".
func DisplayName(raw string) string {
	name := strings.TrimPrefix(raw, Prefix)
	if idx := strings.Index(name, segmentSeparator); idx >= 0 {
		name = name[:idx]
	}
	return title(name)
}

func title(name string) string {
	titler := cases.Title(language.Und)
	words := strings.Split(name, wordSeparator)
	parts := make([]string, 0, len(words))
	for _, word := range words {
		if word == "" {
			continue
		}
		parts = append(parts, titler.String(word))
	}
	return strings.Join(parts, " ")
}

// Key is the reverse of DisplayName without the prefix: "Send Message"
// becomes "send_message".
func Key(display string) string {
	words := strings.Fields(display)
	for i, word := range words {
		words[i] = strings.ToLower(word)
	}
	return strings.Join(words, wordSeparator)
}

// Parse builds a task from a convention key. base options are applied
// before the ones derived from the key, so the key wins on conflicts.
func Parse(key string, fn task.Func, types TypeTable, base ...task.Option) (*task.Task, error) {
	if !HasPrefix(key) {
		return nil, fmt.Errorf("%w: %q", ErrMissingPrefix, key)
	}
	if types == nil {
		types = DefaultTypes()
	}
	segments := strings.Split(strings.TrimPrefix(key, Prefix), segmentSeparator)
	name := title(segments[0])
	if name == "" {
		return nil, fmt.Errorf("convention: %q has no name: %w", key, task.ErrNameRequired)
	}

	repeat, detail := true, false
	var args []task.Arg
	for _, segment := range segments[1:] {
		parts := strings.Split(segment, wordSeparator)
		switch len(parts) {
		case 1:
			switch parts[0] {
			case flagNotRepeat:
				repeat = false
			case flagDetail:
				detail = true
			}
		case 2:
			argName, tag := parts[0], parts[1]
			coercer, ok := types[tag]
			if !ok {
				return nil, fmt.Errorf("%w %q in %s", ErrUnsupportedType, tag, key)
			}
			args = append(args, task.Single(argName, coercer, "input "+tag))
		default:
			return nil, fmt.Errorf("%w, got %q in %s", ErrBadSegment, segment, key)
		}
	}

	opts := append(append([]task.Option(nil), base...),
		task.WithName(name),
		task.WithRepeat(repeat),
		task.WithDetail(detail),
		task.WithArgs(args...),
	)
	return task.New(name, fn, opts...)
}
