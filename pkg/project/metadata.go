package project

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// MetadataFile is the descriptor a package ships at its root to declare
// its own dependencies.
const MetadataFile = "metadata.json"

// Metadata is a package's own descriptor, read after the package has
// been unpacked. It is never trusted before extraction.
type Metadata struct {
	Name         string            `json:"name,omitempty"`
	Version      string            `json:"version,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// ReadMetadata loads the descriptor from an unpacked package directory.
// A missing file or missing dependencies field means "no transitive
// dependencies" and returns an empty Metadata, not an error. A present
// but unparsable descriptor is an error.
func ReadMetadata(pkgDir string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(pkgDir, MetadataFile))
	if os.IsNotExist(err) {
		return &Metadata{}, nil
	}
	if err != nil {
		return nil, err
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
