package task

import (
	"fmt"
	"strings"
)

// Arg describes one expected input. Single arguments read one value; list
// arguments split the input line on Separator and coerce every token.
type Arg struct {
	Name   string
	Prompt string

	// Coercer converts the value of a single argument.
	Coercer Coercer

	// Elements holds list coercers: one applies to every token, more than
	// one is applied positionally and fixes the expected token count.
	Elements  []Coercer
	Separator string

	list bool
}

// Single describes a one-value argument.
func Single(name string, c Coercer, prompt string) Arg {
	return Arg{Name: name, Coercer: c, Prompt: prompt}
}

// List describes a separator-delimited argument.
func List(name, prompt, separator string, elements ...Coercer) Arg {
	return Arg{
		Name:      name,
		Prompt:    prompt,
		Elements:  append([]Coercer(nil), elements...),
		Separator: separator,
		list:      true,
	}
}

// IsList reports whether the descriptor is a list argument.
func (a Arg) IsList() bool { return a.list }

// Validate checks the descriptor shape.
func (a Arg) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidArg)
	}
	if !a.list {
		if a.Coercer.IsZero() {
			return fmt.Errorf("%w: %s has no type", ErrInvalidArg, a.Name)
		}
		return nil
	}
	if a.Separator == "" {
		return fmt.Errorf("%w: separator for %s must be a non-empty string", ErrInvalidArg, a.Name)
	}
	if len(a.Elements) == 0 {
		return fmt.Errorf("%w: %s declares no element types", ErrInvalidArg, a.Name)
	}
	for i, c := range a.Elements {
		if c.IsZero() {
			return fmt.Errorf("%w: %s element %d has no type", ErrInvalidArg, a.Name, i)
		}
	}
	return nil
}

// PromptText is the line shown before reading the value.
func (a Arg) PromptText() string {
	if a.list {
		return a.Prompt + " :"
	}
	return a.Prompt + ": "
}

// Parse coerces one raw input line according to the descriptor.
func (a Arg) Parse(raw string) (any, error) {
	if !a.list {
		return a.Coercer.Coerce(raw)
	}
	tokens := strings.Split(raw, a.Separator)
	if n := len(a.Elements); n > 1 && n != len(tokens) {
		if len(tokens) > n {
			return nil, NewInputError("too many arguments: %s expects %d, got %d", a.Name, n, len(tokens))
		}
		return nil, NewInputError("too few arguments: %s expects %d, got %d", a.Name, n, len(tokens))
	}
	values := make([]any, 0, len(tokens))
	for i, token := range tokens {
		c := a.Elements[0]
		if len(a.Elements) > 1 {
			c = a.Elements[i]
		}
		value, err := c.Coerce(token)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

// Collect prompts for the argument and parses the answer.
func (a Arg) Collect(console Console) (any, error) {
	line, err := console.ReadLine(a.PromptText())
	if err != nil {
		return nil, err
	}
	return a.Parse(line)
}

// Args is the ordered name to value mapping handed to a task function.
type Args struct {
	names  []string
	values map[string]any
}

// NewArgs builds Args from alternating name, value pairs. It is mostly
// useful for calling task functions directly in tests.
func NewArgs(pairs ...any) Args {
	var a Args
	for i := 0; i+1 < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			continue
		}
		a.set(name, pairs[i+1])
	}
	return a
}

func (a *Args) set(name string, value any) {
	if a.values == nil {
		a.values = make(map[string]any)
	}
	if _, exists := a.values[name]; !exists {
		a.names = append(a.names, name)
	}
	a.values[name] = value
}

// Len returns the number of collected arguments.
func (a Args) Len() int { return len(a.names) }

// Names returns argument names in declaration order.
func (a Args) Names() []string { return append([]string(nil), a.names...) }

// Get returns the raw value for name.
func (a Args) Get(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Int returns name as an int.
func (a Args) Int(name string) (int, error) {
	v, err := a.lookup(name)
	if err != nil {
		return 0, err
	}
	i, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("argument %s is %T, not int", name, v)
	}
	return i, nil
}

// Float returns name as a float64.
func (a Args) Float(name string) (float64, error) {
	v, err := a.lookup(name)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("argument %s is %T, not float64", name, v)
	}
	return f, nil
}

// Text returns name as a string.
func (a Args) Text(name string) (string, error) {
	v, err := a.lookup(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %s is %T, not string", name, v)
	}
	return s, nil
}

// List returns the values of a list argument.
func (a Args) List(name string) ([]any, error) {
	v, err := a.lookup(name)
	if err != nil {
		return nil, err
	}
	l, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("argument %s is %T, not a list", name, v)
	}
	return l, nil
}

// Map copies the arguments into a plain map.
func (a Args) Map() map[string]any {
	out := make(map[string]any, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// String renders "name - value" pairs joined by commas.
func (a Args) String() string {
	parts := make([]string, 0, len(a.names))
	for _, name := range a.names {
		parts = append(parts, fmt.Sprintf("%s - %v", name, a.values[name]))
	}
	return strings.Join(parts, ", ")
}

func (a Args) lookup(name string) (any, error) {
	v, ok := a.values[name]
	if !ok {
		return nil, fmt.Errorf("argument %s not provided", name)
	}
	return v, nil
}
