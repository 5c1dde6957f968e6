// Package project owns the per-project installation state: the pakk.json
// file recording which dependencies the user requested (name → version
// spec) and which versions are actually installed (name → version).
//
// The install engine never touches the backing file directly; all reads
// and writes go through [Store]. The store serializes mutations with a
// mutex so parallel installs within one process cannot corrupt the file.
// Two separate processes racing on the same project are NOT protected;
// that is a documented limitation.
package project

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/pakk/pkg/semver"
)

// StateFile is the name of the per-project state file.
const StateFile = "pakk.json"

// ModulesDir is the directory packages are installed into, relative to
// the project root.
const ModulesDir = "pakk_modules"

// CacheDir is the directory downloaded archives are cached in, relative
// to the project root.
const CacheDir = ".pakk_cache"

// state is the on-disk shape of pakk.json.
type state struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
	Installed    map[string]string `json:"installed"`
}

func defaultState() state {
	return state{
		Name:         "my_project",
		Version:      "1.0.0",
		Dependencies: map[string]string{},
		Installed:    map[string]string{},
	}
}

// Store reads and writes a project's installation state.
type Store struct {
	mu   sync.Mutex
	path string
	st   state
}

// Open loads the state file under projectDir, creating it with defaults
// if it doesn't exist. A corrupt file is an error, not silently replaced.
func Open(projectDir string) (*Store, error) {
	s := &Store{path: filepath.Join(projectDir, StateFile)}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.st = defaultState()
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	if err := json.Unmarshal(data, &s.st); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if s.st.Dependencies == nil {
		s.st.Dependencies = map[string]string{}
	}
	if s.st.Installed == nil {
		s.st.Installed = map[string]string{}
	}
	return s, nil
}

// Path returns the location of the backing state file.
func (s *Store) Path() string { return s.path }

// Name returns the project name.
func (s *Store) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Name
}

// Version returns the project's own version string.
func (s *Store) Version() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Version
}

// RequestedSpec returns the declared version spec for name.
// ok is false when the package is not a declared dependency.
func (s *Store) RequestedSpec(name string) (semver.Spec, bool) {
	s.mu.Lock()
	text, exists := s.st.Dependencies[name]
	s.mu.Unlock()
	if !exists {
		return semver.Spec{}, false
	}

	spec, err := semver.ParseSpec(text)
	if err != nil {
		// A spec that was accepted at add time should always reparse;
		// treat a corrupted entry as "latest" rather than wedging installs.
		return semver.Latest, true
	}
	return spec, true
}

// InstalledVersion returns the recorded installed version for name.
// ok is false when nothing is recorded or the record doesn't parse.
func (s *Store) InstalledVersion(name string) (semver.Version, bool) {
	s.mu.Lock()
	text, exists := s.st.Installed[name]
	s.mu.Unlock()
	if !exists {
		return semver.Version{}, false
	}

	v, err := semver.ParseVersion(text)
	if err != nil {
		return semver.Version{}, false
	}
	return v, true
}

// SetInstalledVersion records that name is installed at version and
// persists the state file.
func (s *Store) SetInstalledVersion(name string, v semver.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Installed[name] = v.String()
	return s.save()
}

// AddDependency records a requested dependency spec and persists.
func (s *Store) AddDependency(name, specText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Dependencies[name] = specText
	return s.save()
}

// RemoveEntry removes both the requested spec and the installed record
// for name and persists. Removing an unknown name is a no-op.
func (s *Store) RemoveEntry(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.st.Dependencies, name)
	delete(s.st.Installed, name)
	return s.save()
}

// AllRequested returns a copy of the requested dependency map
// (name → spec text).
func (s *Store) AllRequested() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.st.Dependencies)
}

// Installed returns a copy of the installed version map
// (name → version text).
func (s *Store) Installed() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.st.Installed)
}

// save writes the state file. Callers must hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
