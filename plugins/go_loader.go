package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/kingrea/tasklaunch/task"
)

const scriptFuncName = "Tasks"

// ScriptFile holds the functions exported by one interpreted Go file.
type ScriptFile struct {
	Path  string
	Names []string
	Funcs Catalog
}

// LoadScriptDir evaluates every .go file in dir.
func LoadScriptDir(dir string) ([]ScriptFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var files []ScriptFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		file, err := LoadScriptFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		return nil, nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// LoadScriptFile evaluates one script from disk.
func LoadScriptFile(path string) (ScriptFile, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return ScriptFile{}, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	return EvalScript(path, string(code))
}

// EvalScript interprets src, which must define
//
//	func Tasks() []string
//
// returning the names of top-level functions to export. Each function has
// the shape func() string, func() any or func(map[string]any) any. Names
// using the convention prefix become convention tasks when discovered;
// other names are catalog entries for manifests.
func EvalScript(path, src string) (ScriptFile, error) {
	if len(strings.TrimSpace(src)) == 0 {
		return ScriptFile{}, fmt.Errorf("plugin: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return ScriptFile{}, fmt.Errorf("plugin: load stdlib symbols: %w", err)
	}
	if _, err := i.Eval(src); err != nil {
		return ScriptFile{}, fmt.Errorf("plugin: interpret %s: %w", path, err)
	}
	fnValue, err := i.Eval(scriptFuncName)
	if err != nil {
		return ScriptFile{}, fmt.Errorf("plugin: %s must define %s() []string: %w", path, scriptFuncName, err)
	}
	names, err := invokeTasksFunc(fnValue)
	if err != nil {
		return ScriptFile{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	file := ScriptFile{Path: filepath.Clean(path), Funcs: Catalog{}}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return ScriptFile{}, fmt.Errorf("plugin: %s: empty task name", path)
		}
		if _, dup := file.Funcs[name]; dup {
			return ScriptFile{}, fmt.Errorf("plugin: %s: %s listed twice", path, name)
		}
		value, err := i.Eval(name)
		if err != nil {
			return ScriptFile{}, fmt.Errorf("plugin: %s: resolve %s: %w", path, name, err)
		}
		if !value.IsValid() || value.Kind() != reflect.Func {
			return ScriptFile{}, fmt.Errorf("plugin: %s: %s is not a function", path, name)
		}
		wrapped, err := task.Wrap(value.Interface())
		if err != nil {
			return ScriptFile{}, fmt.Errorf("plugin: %s: %s: %w", path, name, err)
		}
		file.Funcs[name] = wrapped
		file.Names = append(file.Names, name)
	}
	return file, nil
}

func invokeTasksFunc(value reflect.Value) ([]string, error) {
	if !value.IsValid() {
		return nil, fmt.Errorf("missing %s function", scriptFuncName)
	}
	if value.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", scriptFuncName)
	}
	if value.Type().NumIn() != 0 {
		return nil, fmt.Errorf("%s must not take arguments", scriptFuncName)
	}
	results := value.Call(nil)
	if len(results) != 1 {
		return nil, fmt.Errorf("%s must return []string", scriptFuncName)
	}
	names, ok := results[0].Interface().([]string)
	if !ok {
		return nil, fmt.Errorf("%s must return []string, got %s", scriptFuncName, results[0].Type())
	}
	return names, nil
}
