// Package registry defines the backend abstraction the install engine
// talks to: listing available versions for a package and resolving the
// download location of a version's archive.
//
// Two concrete conventions ship in subpackages: contents (a repository
// content-listing API, GitHub style) and lookup (a query-parameterized
// registry API). [Failover] chains backends in priority order and itself
// implements [Backend], so the installer never knows how many registries
// are configured or which one answered.
package registry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/matzehuels/pakk/pkg/httputil"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Archive describes where a package version's archive can be downloaded.
type Archive struct {
	// URL is the direct download location of the archive.
	URL string `json:"url"`
	// Filename is the registry's suggested name, used to pick the cache
	// file name and the unpack format (.zip vs .tar.gz).
	Filename string `json:"filename"`
}

// Backend is one remote registry transport implementation.
//
// ListVersions returns the available version strings for a package,
// highest first. An empty slice with a nil error means the registry
// answered but knows no versions; the installer treats that the same as
// ErrNotFound.
type Backend interface {
	// Name identifies the backend in logs and errors (e.g., "contents").
	Name() string
	// ListVersions returns available versions for pkg, highest first.
	ListVersions(ctx context.Context, pkg string) ([]string, error)
	// ResolveArchive returns the download location for pkg at version.
	ResolveArchive(ctx context.Context, pkg, version string) (*Archive, error)
}

// NewHTTPClient creates an HTTP client with a standard timeout for
// registry requests. The timeout bounds each network call; a timed-out
// call is treated like any other backend failure and triggers failover.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NewCache creates a file-based cache with the given TTL in the default
// cache directory. See [httputil.NewCache] for location and behavior.
func NewCache(ttl time.Duration) (*httputil.Cache, error) {
	return httputil.NewCache("", ttl)
}
