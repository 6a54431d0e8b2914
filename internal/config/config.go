// Package config loads the optional tasks.yaml file that tunes the CLI:
// presentation defaults for tasks, where to discover task definitions and
// where to write the log.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/tasklaunch/task"
)

// FileName is the config file looked up in the working directory.
const FileName = "tasks.yaml"

// Style modes.
const (
	StyleAuto   = "auto"
	StyleAlways = "always"
	StyleNever  = "never"
)

const defaultConfigYAML = `# tasklaunch configuration
version: 1

# Printed before and after every task run.
separator: "---------------------------------------"

# Asked after every successful run of a repeating task. Answer 1 to repeat.
repeat_prompt: "Do you want to repeat this task? "

# Printed before argument prompts.
args_prompt: "Send arguments"

# Directory scanned for *.go task scripts and *.yaml manifests.
tasks_dir: tasks

# Leave empty to disable logging.
log_file: ""

# Rotate the log past this many megabytes, keeping log_max_backups old files.
log_max_size_mb: 10
log_max_backups: 3

# auto styles task headers only when stdout is a terminal; always or never.
style: auto
`

// Config models tasks.yaml.
type Config struct {
	Version      int    `yaml:"version"`
	Separator    string `yaml:"separator"`
	RepeatPrompt string `yaml:"repeat_prompt"`
	ArgsPrompt   string `yaml:"args_prompt"`
	TasksDir     string `yaml:"tasks_dir"`
	LogFile      string `yaml:"log_file"`
	LogMaxSizeMB int    `yaml:"log_max_size_mb"`
	LogMaxBackup int    `yaml:"log_max_backups"`
	Style        string `yaml:"style"`

	// Path is the file the config was read from; empty for defaults.
	Path string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version:      1,
		Separator:    task.DefaultSeparator,
		RepeatPrompt: task.DefaultRepeatPrompt,
		ArgsPrompt:   task.DefaultArgsPrompt,
		TasksDir:     "tasks",
		LogMaxSizeMB: 10,
		LogMaxBackup: 3,
		Style:        StyleAuto,
	}
}

// Load reads path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes a YAML payload. Relative paths resolve against base.
func Parse(data []byte, base string) (*Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	cfg.normalize(base)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TaskOptions returns the presentation settings as task options.
func (c *Config) TaskOptions() []task.Option {
	return []task.Option{
		task.WithSeparator(c.Separator),
		task.WithRepeatPrompt(c.RepeatPrompt),
		task.WithArgsPrompt(c.ArgsPrompt),
	}
}

// Styled reports whether task headers should be styled given whether the
// output is a terminal.
func (c *Config) Styled(terminal bool) bool {
	switch c.Style {
	case StyleAlways:
		return true
	case StyleNever:
		return false
	default:
		return terminal
	}
}

// WriteDefault creates a commented default config at path unless a file
// already exists there.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("config: ensure dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return false, fmt.Errorf("config: write %s: %w", path, err)
	}
	return true, nil
}

func (c *Config) normalize(base string) {
	if c.Version == 0 {
		c.Version = 1
	}
	c.Style = strings.ToLower(strings.TrimSpace(c.Style))
	if c.Style == "" {
		c.Style = StyleAuto
	}
	c.TasksDir = resolvePath(base, c.TasksDir)
	c.LogFile = resolvePath(base, c.LogFile)
}

func (c *Config) validate() error {
	if c.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if c.LogMaxSizeMB < 0 || c.LogMaxBackup < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	if c.Separator == "" {
		return fmt.Errorf("separator must not be empty")
	}
	switch c.Style {
	case StyleAuto, StyleAlways, StyleNever:
	default:
		return fmt.Errorf("style must be one of auto, always, never")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) || base == "" {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}
