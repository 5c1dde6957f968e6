// Package contents implements the content-listing registry convention.
//
// The registry is a repository whose file tree encodes the package index:
// packages/<name>/<version>/<archive>. Versions are discovered by listing
// the package directory, archives by listing the version directory. This
// matches the GitHub contents API, which is the transport the default
// pakk registry runs on.
package contents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/pakk/pkg/registry"
	"github.com/matzehuels/pakk/pkg/semver"
)

const defaultBaseURL = "https://api.github.com"

// Client lists versions and resolves archives against a content-listing
// API. It handles HTTP requests with caching, automatic retries, and
// optional authentication.
type Client struct {
	*registry.Client
	baseURL string
	repo    string // "owner/name" of the registry repository
}

// NewClient creates a contents backend for the given registry repository
// ("owner/name"). Pass an empty token for unauthenticated requests
// (lower rate limits).
func NewClient(repo, token string, cacheTTL time.Duration) (*Client, error) {
	cache, err := registry.NewCache(cacheTTL)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	return &Client{
		Client:  registry.NewClient(cache.Namespace("contents:"), headers),
		baseURL: defaultBaseURL,
		repo:    repo,
	}, nil
}

// Name identifies this backend in logs and errors.
func (c *Client) Name() string { return "contents" }

// ListVersions lists the version directories under packages/<pkg>,
// sorted highest first. The contents API returns entries in lexicographic
// name order, so the client re-sorts by version triple itself.
func (c *Client) ListVersions(ctx context.Context, pkg string) ([]string, error) {
	items, err := c.list(ctx, "packages/"+pkg)
	if err != nil {
		return nil, err
	}

	var versions []string
	for _, item := range items {
		if item.Type == "dir" {
			versions = append(versions, item.Name)
		}
	}
	return semver.SortDescending(versions), nil
}

// ResolveArchive finds the archive file in packages/<pkg>/<version> and
// returns its download URL. The first .zip or .tar.gz entry wins.
func (c *Client) ResolveArchive(ctx context.Context, pkg, version string) (*registry.Archive, error) {
	items, err := c.list(ctx, fmt.Sprintf("packages/%s/%s", pkg, version))
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if item.Type != "file" {
			continue
		}
		if strings.HasSuffix(item.Name, ".zip") || strings.HasSuffix(item.Name, ".tar.gz") || strings.HasSuffix(item.Name, ".tgz") {
			return &registry.Archive{URL: item.DownloadURL, Filename: item.Name}, nil
		}
	}
	return nil, fmt.Errorf("%w: no archive for %s@%s", registry.ErrNotFound, pkg, version)
}

func (c *Client) list(ctx context.Context, path string) ([]contentItem, error) {
	key := c.repo + "/" + path

	var items []contentItem
	err := c.Cached(ctx, key, false, &items, func() error {
		url := fmt.Sprintf("%s/repos/%s/contents/%s", c.baseURL, c.repo, path)
		return c.Get(ctx, url, &items)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

type contentItem struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"` // "file" or "dir"
	DownloadURL string `json:"download_url"`
}
