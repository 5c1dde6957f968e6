// Package archive downloads, unpacks, and creates package archives.
//
// Supported formats are zip and gzip-compressed tar, dispatched by file
// extension. Unpacking always replaces the destination directory wholesale
// so a reinstall can never leave stale files behind, and archives that
// wrap their payload in a single top-level folder are normalized by
// hoisting the contents up one level.
package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/pakk/pkg/errors"
	"github.com/matzehuels/pakk/pkg/httputil"
	"github.com/matzehuels/pakk/pkg/registry"
)

// Fetch streams the resource at url into destDir/filename using the
// given registry client and returns the final path.
//
// The payload is written to a ".partial" file first and renamed only
// after the stream completes, so a failed fetch never leaves a partial
// file at the final path. Any failure returns DOWNLOAD_FAILED.
//
// Opening the download is retried with backoff on transient failures:
// the archive host is outside the registry failover chain, so a second
// attempt here is the only recourse against a flaky CDN. Definitive
// answers (404) are not retried.
func Fetch(ctx context.Context, client *registry.Client, url, destDir, filename string) (string, error) {
	if err := errors.ValidateURL(url); err != nil {
		return "", err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeDownloadFailed, err, "creating cache dir %s", destDir)
	}

	finalPath := filepath.Join(destDir, filename)
	partialPath := finalPath + ".partial"

	var body io.ReadCloser
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		body, err = client.GetStream(ctx, url)
		return err
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeDownloadFailed, err, "fetching %s", url)
	}
	defer body.Close()

	out, err := os.Create(partialPath)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeDownloadFailed, err, "creating %s", partialPath)
	}

	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		os.Remove(partialPath)
		return "", errors.Wrap(errors.ErrCodeDownloadFailed, err, "writing %s", partialPath)
	}
	if err := out.Close(); err != nil {
		os.Remove(partialPath)
		return "", errors.Wrap(errors.ErrCodeDownloadFailed, err, "closing %s", partialPath)
	}

	if err := os.Rename(partialPath, finalPath); err != nil {
		os.Remove(partialPath)
		return "", errors.Wrap(errors.ErrCodeDownloadFailed, err, "finalizing %s", finalPath)
	}
	return finalPath, nil
}
