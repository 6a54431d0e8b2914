// Package launcher aggregates tasks and dispatches them by name.
package launcher

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/kingrea/tasklaunch/convention"
	"github.com/kingrea/tasklaunch/task"
)

// ErrTaskNotFound is wrapped by NotFoundError.
var ErrTaskNotFound = errors.New("no task with name")

// NotFoundError reports a name that matched no registered task.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) > 0 {
		return fmt.Sprintf("launcher: no task with name %q (did you mean %s?)", e.Name, strings.Join(e.Suggestions, ", "))
	}
	return fmt.Sprintf("launcher: no task with name %q", e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrTaskNotFound }

const maxSuggestions = 3

// entry is one registration: either a ready task or a convention key whose
// task is derived on every Tasks call.
type entry struct {
	task *task.Task
	key  string
	fn   task.Func
}

// Launcher holds task registrations in declaration order.
type Launcher struct {
	mu       sync.RWMutex
	entries  []entry
	types    convention.TypeTable
	defaults []task.Option
}

// Option customizes a Launcher.
type Option func(*Launcher)

// WithTypes replaces the convention type table.
func WithTypes(types convention.TypeTable) Option {
	return func(l *Launcher) {
		if types != nil {
			l.types = types.Clone()
		}
	}
}

// WithDefaults sets options applied beneath every convention task.
func WithDefaults(opts ...task.Option) Option {
	return func(l *Launcher) {
		l.defaults = append([]task.Option(nil), opts...)
	}
}

// New returns an empty launcher using the default type tags.
func New(opts ...Option) *Launcher {
	l := &Launcher{types: convention.DefaultTypes()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add registers a ready task.
func (l *Launcher) Add(t *task.Task) error {
	if t == nil {
		return fmt.Errorf("launcher: task is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("launcher: %w", task.ErrNameRequired)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{task: t})
	return nil
}

// AddFunc registers fn under a convention key such as
// task_send_message__notrepeat__count_int. The key is parsed by Tasks.
func (l *Launcher) AddFunc(key string, fn any) error {
	if !convention.HasPrefix(key) {
		return fmt.Errorf("launcher: %w: %q", convention.ErrMissingPrefix, key)
	}
	wrapped, err := task.Wrap(fn)
	if err != nil {
		return fmt.Errorf("launcher: %s: %w", key, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{key: key, fn: wrapped})
	return nil
}

// MustAdd panics if Add fails.
func (l *Launcher) MustAdd(t *task.Task) {
	if err := l.Add(t); err != nil {
		panic(err)
	}
}

// MustAddFunc panics if AddFunc fails.
func (l *Launcher) MustAddFunc(key string, fn any) {
	if err := l.AddFunc(key, fn); err != nil {
		panic(err)
	}
}

// RegisterType adds or replaces a convention type tag.
func (l *Launcher) RegisterType(tag string, c task.Coercer) error {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.Contains(tag, "_") {
		return fmt.Errorf("launcher: invalid type tag %q", tag)
	}
	if c.IsZero() {
		return fmt.Errorf("launcher: type %s: %w", tag, task.ErrInvalidArg)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.types[tag] = c
	return nil
}

// Types returns a copy of the convention type table.
func (l *Launcher) Types() convention.TypeTable {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.types.Clone()
}

// Defaults returns the launcher-wide task options.
func (l *Launcher) Defaults() []task.Option {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]task.Option(nil), l.defaults...)
}

// Tasks builds a fresh set of tasks keyed by display name. Convention keys
// are parsed on every call; a later task with a colliding name replaces the
// earlier one in place.
func (l *Launcher) Tasks() (*Set, error) {
	l.mu.RLock()
	entries := append([]entry(nil), l.entries...)
	types := l.types.Clone()
	defaults := append([]task.Option(nil), l.defaults...)
	l.mu.RUnlock()

	set := newSet()
	for _, e := range entries {
		if e.task != nil {
			set.put(e.task)
			continue
		}
		parsed, err := convention.Parse(e.key, e.fn, types, defaults...)
		if err != nil {
			return nil, fmt.Errorf("launcher: %w", err)
		}
		set.put(parsed)
	}
	return set, nil
}

// RunAll runs every task in set order and stops at the first failure.
func (l *Launcher) RunAll(rc *task.RunContext) error {
	set, err := l.Tasks()
	if err != nil {
		return err
	}
	for _, t := range set.All() {
		if err := t.Run(rc); err != nil {
			return err
		}
	}
	return nil
}

// Run runs the named tasks in the given order. Names containing "_" are
// normalised to display form first. Every name is resolved before any task
// runs.
func (l *Launcher) Run(rc *task.RunContext, names ...string) error {
	set, err := l.Tasks()
	if err != nil {
		return err
	}
	selected, err := set.Resolve(names...)
	if err != nil {
		return err
	}
	for _, t := range selected {
		if err := t.Run(rc); err != nil {
			return err
		}
	}
	return nil
}

// Set is an insertion-ordered collection of tasks keyed by display name.
type Set struct {
	order  []string
	byName map[string]*task.Task
}

func newSet() *Set {
	return &Set{byName: map[string]*task.Task{}}
}

func (s *Set) put(t *task.Task) {
	if _, exists := s.byName[t.Name]; !exists {
		s.order = append(s.order, t.Name)
	}
	s.byName[t.Name] = t
}

// Len returns the number of tasks.
func (s *Set) Len() int { return len(s.order) }

// Names returns display names in order.
func (s *Set) Names() []string { return append([]string(nil), s.order...) }

// All returns the tasks in order.
func (s *Set) All() []*task.Task {
	out := make([]*task.Task, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}

// Get looks a task up by display name.
func (s *Set) Get(name string) (*task.Task, bool) {
	t, ok := s.byName[name]
	return t, ok
}

// Lookup accepts a display name or its snake-case form.
func (s *Set) Lookup(name string) (*task.Task, error) {
	if strings.Contains(name, "_") {
		name = convention.DisplayName(name)
	}
	if t, ok := s.byName[name]; ok {
		return t, nil
	}
	return nil, &NotFoundError{Name: name, Suggestions: s.suggest(name)}
}

// Resolve looks up every name and fails on the first unknown one.
func (s *Set) Resolve(names ...string) ([]*task.Task, error) {
	out := make([]*task.Task, 0, len(names))
	for _, name := range names {
		t, err := s.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Set) suggest(name string) []string {
	if name == "" || len(s.order) == 0 {
		return nil
	}
	matches := fuzzy.Find(strings.ToLower(name), lowerAll(s.order))
	var out []string
	for _, match := range matches {
		out = append(out, s.order[match.Index])
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
