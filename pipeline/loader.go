package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Loader resolves pipeline definitions by name. The runner uses it to
// resolve nested pipeline references before execution starts.
type Loader interface {
	Load(name string) (*Pipeline, error)
}

// Lister is optionally implemented by loaders that can enumerate the
// pipeline names they resolve.
type Lister interface {
	List() ([]string, error)
}

// FileLoader loads pipelines from YAML files on disk.
type FileLoader struct {
	dirs []string
}

// NewFileLoader creates a loader that searches the given directories for
// pipeline YAML files.
func NewFileLoader(dirs ...string) *FileLoader {
	return &FileLoader{dirs: dirs}
}

// Load searches for a pipeline YAML file by name across configured
// directories. It searches for {name}.yaml and {name}.yml in each directory
// and its subdirectories, top-level files first. A file that exists but
// does not parse is reported as a parse error, not as a missing pipeline.
func (l *FileLoader) Load(name string) (*Pipeline, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, name+ext)
			if _, err := os.Stat(path); err == nil {
				return LoadFile(path)
			}
		}
		if path := findInTree(dir, name); path != "" {
			return LoadFile(path)
		}
	}
	return nil, fmt.Errorf("pipeline: %q not found in %v", name, l.dirs)
}

// findInTree walks dir looking for {name}.yaml or {name}.yml, returning the
// first match in lexical walk order. Unreadable entries are skipped.
func findInTree(dir, name string) string {
	var found string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if base := d.Name(); base == name+".yaml" || base == name+".yml" {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	return found
}

// List returns the names of all pipeline YAML files across configured
// directories and their subdirectories, sorted and de-duplicated.
func (l *FileLoader) List() ([]string, error) {
	seen := make(map[string]struct{})
	for _, dir := range l.dirs {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			ext := filepath.Ext(d.Name())
			if ext == ".yaml" || ext == ".yml" {
				seen[strings.TrimSuffix(d.Name(), ext)] = struct{}{}
			}
			return nil
		})
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// MapLoader resolves pipelines from an in-memory map, keyed by name.
// Useful for embedded definitions and tests.
type MapLoader map[string]*Pipeline

// Load returns the pipeline registered under name.
func (l MapLoader) Load(name string) (*Pipeline, error) {
	p, ok := l[name]
	if !ok {
		return nil, fmt.Errorf("pipeline: %q not registered", name)
	}
	return p, nil
}

// List returns the registered pipeline names, sorted.
func (l MapLoader) List() ([]string, error) {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// LoadFile parses a pipeline definition from a YAML file.
func LoadFile(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("pipeline: parsing %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a pipeline definition from YAML bytes. Parsing is purely
// syntactic; call Build to validate the dependency structure.
func Parse(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
