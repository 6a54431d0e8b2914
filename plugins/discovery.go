package plugins

import (
	"fmt"

	"github.com/kingrea/tasklaunch/convention"
	"github.com/kingrea/tasklaunch/launcher"
)

// Discover loads Go scripts and then YAML manifests from dir and registers
// their tasks into l.
//
// Script keys with the convention prefix are registered directly. Other
// script keys join catalog so manifests can reference them; a name defined
// twice is an error.
func Discover(l *launcher.Launcher, dir string, catalog Catalog) error {
	if l == nil {
		return nil
	}
	scripts, err := LoadScriptDir(dir)
	if err != nil {
		return err
	}
	merged := make(Catalog, len(catalog))
	origin := make(map[string]string, len(catalog))
	for name, fn := range catalog {
		merged[name] = fn
		origin[name] = "built-in catalog"
	}
	for _, script := range scripts {
		for _, name := range script.Names {
			fn := script.Funcs[name]
			if convention.HasPrefix(name) {
				if err := l.AddFunc(name, fn); err != nil {
					return fmt.Errorf("plugin: register %s from %s: %w", name, script.Path, err)
				}
				continue
			}
			if existing, ok := origin[name]; ok {
				return fmt.Errorf("plugin: duplicate func %s (%s and %s)", name, existing, script.Path)
			}
			merged[name] = fn
			origin[name] = script.Path
		}
	}

	manifests, err := LoadManifestDir(dir)
	if err != nil {
		return err
	}
	for _, file := range manifests {
		if err := file.Manifest.Register(l, merged); err != nil {
			return fmt.Errorf("plugin: %s: %w", file.Path, err)
		}
	}
	return nil
}
