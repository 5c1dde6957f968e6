// Package lookup implements the query-parameterized registry convention.
//
// Unlike the contents backend, which walks a repository tree, a lookup
// registry exposes two purpose-built endpoints keyed by query parameters:
//
//	GET {base}/v1/versions?package={name}
//	GET {base}/v1/download?package={name}&version={version}
//
// Mirrors of the default registry serve this shape; it is also the
// easiest contract to stand up in front of arbitrary storage.
package lookup

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/matzehuels/pakk/pkg/registry"
	"github.com/matzehuels/pakk/pkg/semver"
)

// Client talks to a lookup-style registry endpoint.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*registry.Client
	baseURL string
}

// NewClient creates a lookup backend for the given base URL.
func NewClient(baseURL string, cacheTTL time.Duration) (*Client, error) {
	cache, err := registry.NewCache(cacheTTL)
	if err != nil {
		return nil, err
	}
	return &Client{
		Client:  registry.NewClient(cache.Namespace("lookup:"), nil),
		baseURL: baseURL,
	}, nil
}

// Name identifies this backend in logs and errors.
func (c *Client) Name() string { return "lookup" }

// ListVersions queries the versions endpoint, sorted highest first.
// The endpoint may return versions in any order.
func (c *Client) ListVersions(ctx context.Context, pkg string) ([]string, error) {
	key := c.baseURL + ":versions:" + pkg

	var data versionsResponse
	err := c.Cached(ctx, key, false, &data, func() error {
		u := fmt.Sprintf("%s/v1/versions?package=%s", c.baseURL, url.QueryEscape(pkg))
		return c.Get(ctx, u, &data)
	})
	if err != nil {
		return nil, err
	}
	return semver.SortDescending(data.Versions), nil
}

// ResolveArchive queries the download endpoint for the archive location.
func (c *Client) ResolveArchive(ctx context.Context, pkg, version string) (*registry.Archive, error) {
	key := c.baseURL + ":download:" + pkg + "@" + version

	var data downloadResponse
	err := c.Cached(ctx, key, false, &data, func() error {
		u := fmt.Sprintf("%s/v1/download?package=%s&version=%s",
			c.baseURL, url.QueryEscape(pkg), url.QueryEscape(version))
		return c.Get(ctx, u, &data)
	})
	if err != nil {
		return nil, err
	}
	if data.URL == "" {
		return nil, fmt.Errorf("%w: no archive for %s@%s", registry.ErrNotFound, pkg, version)
	}
	return &registry.Archive{URL: data.URL, Filename: data.Filename}, nil
}

type versionsResponse struct {
	Versions []string `json:"versions"`
}

type downloadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}
