package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/tasklaunch/launcher"
)

// Manifest is a YAML file declaring tasks bound to catalog functions.
type Manifest struct {
	Version int              `yaml:"version,omitempty"`
	Tasks   []TaskDefinition `yaml:"tasks"`
}

// ManifestFile pairs a parsed manifest with its on-disk source.
type ManifestFile struct {
	Manifest Manifest
	Path     string
}

// ParseManifest decodes and validates a manifest payload.
func ParseManifest(data []byte) (Manifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Manifest{}, fmt.Errorf("plugin: manifest payload is empty")
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("plugin: decode manifest: %w", err)
	}
	if len(m.Tasks) == 0 {
		return Manifest{}, fmt.Errorf("plugin: manifest declares no tasks")
	}
	for i := range m.Tasks {
		m.Tasks[i] = m.Tasks[i].Normalized()
		if err := m.Tasks[i].Validate(); err != nil {
			return Manifest{}, fmt.Errorf("tasks[%d]: %w", i, err)
		}
	}
	return m, nil
}

// Register adds every task of the manifest to l.
func (m Manifest) Register(l *launcher.Launcher, catalog Catalog) error {
	for _, def := range m.Tasks {
		if err := def.Register(l, catalog); err != nil {
			return err
		}
	}
	return nil
}

// LoadManifestFile reads a YAML manifest from disk.
func LoadManifestFile(path string) (ManifestFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ManifestFile{}, fmt.Errorf("plugin: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return ManifestFile{}, fmt.Errorf("plugin: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ManifestFile{}, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return ManifestFile{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	return ManifestFile{Manifest: m, Path: filepath.Clean(path)}, nil
}

// LoadManifestDir scans a directory for *.yaml manifests. Missing
// directories are treated as "no manifests".
func LoadManifestDir(dir string) ([]ManifestFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var files []ManifestFile
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}
		file, err := LoadManifestFile(filepath.Join(trimmed, entry.Name()))
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

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
