package plugins

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/tasklaunch/convention"
	"github.com/kingrea/tasklaunch/launcher"
	"github.com/kingrea/tasklaunch/task"
)

// listTag marks a list descriptor in the type position.
const listTag = "list"

// Catalog maps function names referenced by manifests to implementations.
type Catalog map[string]task.Func

// TaskDefinition declares one task in a manifest. Either Name or Convention
// is set; Func names the implementation in the catalog.
type TaskDefinition struct {
	Name         string      `yaml:"name,omitempty"`
	Convention   string      `yaml:"convention,omitempty"`
	Func         string      `yaml:"func"`
	Repeat       *bool       `yaml:"repeat,omitempty"`
	Detail       *bool       `yaml:"detail,omitempty"`
	Separator    string      `yaml:"separator,omitempty"`
	RepeatPrompt string      `yaml:"repeat_prompt,omitempty"`
	ArgsPrompt   string      `yaml:"args_prompt,omitempty"`
	Args         Descriptors `yaml:"args,omitempty"`
}

// Normalized returns a trimmed copy.
func (def TaskDefinition) Normalized() TaskDefinition {
	clone := def
	clone.Name = strings.TrimSpace(def.Name)
	clone.Convention = strings.TrimSpace(def.Convention)
	clone.Func = strings.TrimSpace(def.Func)
	return clone
}

// Label identifies the definition in error messages.
func (def TaskDefinition) Label() string {
	if def.Name != "" {
		return def.Name
	}
	if def.Convention != "" {
		return def.Convention
	}
	return def.Func
}

// Validate checks the definition shape. Argument descriptors are checked
// when the task is built.
func (def TaskDefinition) Validate() error {
	normalized := def.Normalized()
	if normalized.Func == "" {
		return fmt.Errorf("plugin: task %s: func is required", normalized.Label())
	}
	switch {
	case normalized.Name == "" && normalized.Convention == "":
		return fmt.Errorf("plugin: task %s: name or convention is required", normalized.Func)
	case normalized.Name != "" && normalized.Convention != "":
		return fmt.Errorf("plugin: task %s: name and convention are mutually exclusive", normalized.Name)
	}
	if normalized.Convention != "" {
		if !convention.HasPrefix(normalized.Convention) {
			return fmt.Errorf("plugin: task %s: %w", normalized.Convention, convention.ErrMissingPrefix)
		}
		if len(normalized.Args) > 0 || normalized.Repeat != nil || normalized.Detail != nil {
			return fmt.Errorf("plugin: task %s: convention tasks take their flags and args from the key", normalized.Convention)
		}
	}
	return nil
}

// Register binds the definition to catalog and adds it to l.
func (def TaskDefinition) Register(l *launcher.Launcher, catalog Catalog) error {
	def = def.Normalized()
	if err := def.Validate(); err != nil {
		return err
	}
	fn, ok := catalog[def.Func]
	if !ok || fn == nil {
		return fmt.Errorf("plugin: task %s: unknown func %q", def.Label(), def.Func)
	}
	if def.Convention != "" {
		return l.AddFunc(def.Convention, fn)
	}
	built, err := def.Build(fn, l.Types(), l.Defaults()...)
	if err != nil {
		return err
	}
	return l.Add(built)
}

// Build constructs the task. base options sit beneath the definition's own.
func (def TaskDefinition) Build(fn task.Func, types convention.TypeTable, base ...task.Option) (*task.Task, error) {
	def = def.Normalized()
	args, err := def.Args.Resolve(types)
	if err != nil {
		return nil, fmt.Errorf("plugin: task %s: %w", def.Label(), err)
	}
	opts := append([]task.Option(nil), base...)
	opts = append(opts, task.WithArgs(args...))
	if def.Repeat != nil {
		opts = append(opts, task.WithRepeat(*def.Repeat))
	}
	if def.Detail != nil {
		opts = append(opts, task.WithDetail(*def.Detail))
	}
	if def.Separator != "" {
		opts = append(opts, task.WithSeparator(def.Separator))
	}
	if def.RepeatPrompt != "" {
		opts = append(opts, task.WithRepeatPrompt(def.RepeatPrompt))
	}
	if def.ArgsPrompt != "" {
		opts = append(opts, task.WithArgsPrompt(def.ArgsPrompt))
	}
	built, err := task.New(def.Name, fn, opts...)
	if err != nil {
		return nil, fmt.Errorf("plugin: task %s: %w", def.Label(), err)
	}
	return built, nil
}

// Descriptor is one raw argument descriptor:
//
//	[name, type, prompt]
//	[name, list, prompt, [type..., separator]]
type Descriptor struct {
	items []*yaml.Node
}

// Descriptors is the args sequence of a task definition.
type Descriptors []Descriptor

// UnmarshalYAML requires a sequence of descriptor sequences. A single flat
// descriptor is rejected rather than guessed at.
func (d *Descriptors) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: args must be a list of descriptors", node.Line)
	}
	out := make(Descriptors, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.SequenceNode {
			return fmt.Errorf("line %d: %w: each descriptor must be a list like [name, type, prompt]", item.Line, task.ErrInvalidArg)
		}
		out = append(out, Descriptor{items: item.Content})
	}
	*d = out
	return nil
}

// Resolve converts every descriptor.
func (d Descriptors) Resolve(types convention.TypeTable) ([]task.Arg, error) {
	args := make([]task.Arg, 0, len(d))
	for idx, desc := range d {
		arg, err := desc.Arg(types)
		if err != nil {
			return nil, fmt.Errorf("args[%d]: %w", idx, err)
		}
		args = append(args, arg)
	}
	return args, nil
}

// Arg converts the descriptor using types for tag lookup.
func (d Descriptor) Arg(types convention.TypeTable) (task.Arg, error) {
	if types == nil {
		types = convention.DefaultTypes()
	}
	if n := len(d.items); n != 3 && n != 4 {
		return task.Arg{}, fmt.Errorf("%w: descriptor length must be 3 or 4, got %d", task.ErrInvalidArg, n)
	}
	name, err := scalar(d.items[0], "name")
	if err != nil {
		return task.Arg{}, err
	}
	tag, err := scalar(d.items[1], "type")
	if err != nil {
		return task.Arg{}, err
	}
	prompt, err := scalar(d.items[2], "prompt")
	if err != nil {
		return task.Arg{}, err
	}
	if len(d.items) == 3 {
		c, ok := types[tag]
		if !ok {
			return task.Arg{}, fmt.Errorf("%w: unsupported type %q for %s", task.ErrInvalidArg, tag, name)
		}
		arg := task.Single(name, c, prompt)
		return arg, arg.Validate()
	}

	options := d.items[3]
	if options.Kind != yaml.SequenceNode || len(options.Content) == 0 {
		return task.Arg{}, fmt.Errorf("%w: options for %s must be a list ending in a separator", task.ErrInvalidArg, name)
	}
	last := options.Content[len(options.Content)-1]
	if last.Kind != yaml.ScalarNode || last.ShortTag() != "!!str" {
		return task.Arg{}, fmt.Errorf("%w: separator for %s must be a string", task.ErrInvalidArg, name)
	}
	var elements []task.Coercer
	for _, node := range options.Content[:len(options.Content)-1] {
		elemTag, err := scalar(node, "element type")
		if err != nil {
			return task.Arg{}, err
		}
		c, ok := types[elemTag]
		if !ok {
			return task.Arg{}, fmt.Errorf("%w: unsupported type %q for %s", task.ErrInvalidArg, elemTag, name)
		}
		elements = append(elements, c)
	}
	if len(elements) == 0 && tag != listTag {
		c, ok := types[tag]
		if !ok {
			return task.Arg{}, fmt.Errorf("%w: unsupported type %q for %s", task.ErrInvalidArg, tag, name)
		}
		elements = append(elements, c)
	}
	arg := task.List(name, prompt, last.Value, elements...)
	return arg, arg.Validate()
}

func scalar(node *yaml.Node, field string) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("%w: descriptor %s must be a scalar (line %d)", task.ErrInvalidArg, field, node.Line)
	}
	return strings.TrimSpace(node.Value), nil
}
