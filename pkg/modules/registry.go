// Package modules provides an explicit, caller-owned registry of loaded
// packages. Loading a package reads its descriptor and resolves its
// install directory; nothing is cached process-wide — the caller owns
// the Registry and decides when entries are reloaded or evicted.
package modules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/matzehuels/pakk/pkg/errors"
	"github.com/matzehuels/pakk/pkg/project"
)

// Module is a loaded package: its install directory plus descriptor.
type Module struct {
	Name     string
	Dir      string
	Metadata *project.Metadata
}

// Registry maps package names to loaded modules for one modules
// directory. It is not goroutine-safe; a caller sharing a Registry
// across goroutines must synchronize access.
type Registry struct {
	dir    string
	loaded map[string]*Module
}

// NewRegistry creates an empty registry over the given modules directory.
func NewRegistry(modulesDir string) *Registry {
	return &Registry{
		dir:    modulesDir,
		loaded: make(map[string]*Module),
	}
}

// Load returns the module for name, reading it from disk on first use.
// A package that isn't installed is an error.
func (r *Registry) Load(name string) (*Module, error) {
	if m, ok := r.loaded[name]; ok {
		return m, nil
	}
	return r.Reload(name)
}

// Reload re-reads the module from disk, replacing any loaded entry.
func (r *Registry) Reload(name string) (*Module, error) {
	if err := errors.ValidatePackageName(name); err != nil {
		return nil, err
	}

	dir := filepath.Join(r.dir, name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("package %q is not installed (run 'pakk install' first)", name)
	}

	meta, err := project.ReadMetadata(dir)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}

	m := &Module{Name: name, Dir: dir, Metadata: meta}
	r.loaded[name] = m
	return m, nil
}

// Evict drops the loaded entry for name. Evicting an unloaded name is a
// no-op.
func (r *Registry) Evict(name string) {
	delete(r.loaded, name)
}

// Loaded returns the names of currently loaded modules, sorted.
func (r *Registry) Loaded() []string {
	names := make([]string, 0, len(r.loaded))
	for name := range r.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadAll loads every installed package under the modules directory.
// Unloadable entries are skipped and reported in the second return value
// keyed by name.
func (r *Registry) LoadAll() ([]*Module, map[string]error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, nil
	}

	var mods []*Module
	failed := make(map[string]error)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, err := r.Load(e.Name())
		if err != nil {
			failed[e.Name()] = err
			continue
		}
		mods = append(mods, m)
	}
	if len(failed) == 0 {
		failed = nil
	}
	return mods, failed
}
