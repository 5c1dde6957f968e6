package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/pakk/pkg/errors"
)

// Unpack extracts the archive at archivePath into destDir.
//
// Any pre-existing destDir is removed first (full wipe, not merge), so no
// stale files survive a reinstall. On extraction failure destDir is wiped
// again and EXTRACT_FAILED is returned; the directory is never left
// half-populated in a way a caller could mistake for a successful install.
//
// After extraction, single-root archives (a lone top-level directory
// wrapping the payload) are normalized by hoisting the contents up.
func Unpack(archivePath, destDir string) error {
	if err := os.RemoveAll(destDir); err != nil {
		return errors.Wrap(errors.ErrCodeExtractFailed, err, "clearing %s", destDir)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeExtractFailed, err, "creating %s", destDir)
	}

	var err error
	switch {
	case strings.HasSuffix(archivePath, ".zip"):
		err = extractZip(archivePath, destDir)
	case strings.HasSuffix(archivePath, ".tar.gz"), strings.HasSuffix(archivePath, ".tgz"):
		err = extractTarGz(archivePath, destDir)
	default:
		err = fmt.Errorf("unsupported archive format: %s", filepath.Base(archivePath))
	}
	if err != nil {
		os.RemoveAll(destDir)
		return errors.Wrap(errors.ErrCodeExtractFailed, err, "extracting %s", filepath.Base(archivePath))
	}

	hoistSingleRoot(destDir)
	return nil
}

func extractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := securePath(destDir, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = writeFile(target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func extractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := securePath(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		}
		// Symlinks and special files are skipped; packages are plain trees.
	}
}

// securePath joins name under destDir and rejects entries that would
// escape it (zip-slip). An entry that cleans to the destination itself
// maps to destDir; tars created with "tar -C dir ." lead with a "./"
// entry, which must extract, not error.
func securePath(destDir, name string) (string, error) {
	base := filepath.Clean(destDir)
	target := filepath.Join(base, filepath.Clean(name))
	if target == base {
		return target, nil
	}
	if !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal archive entry path: %s", name)
	}
	return target, nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// hoistSingleRoot moves the contents of a lone top-level directory up
// into destDir and removes the wrapper. Archives often wrap their payload
// in a version-named folder (pkg-1.0.0/). If the precondition doesn't
// hold (multiple entries, or the single entry is a file) the layout is
// left as-is; that is accepted behavior, not an error.
func hoistSingleRoot(destDir string) {
	entries, err := os.ReadDir(destDir)
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		return
	}

	wrapper := filepath.Join(destDir, entries[0].Name())
	inner, err := os.ReadDir(wrapper)
	if err != nil {
		return
	}

	for _, e := range inner {
		if err := os.Rename(filepath.Join(wrapper, e.Name()), filepath.Join(destDir, e.Name())); err != nil {
			return
		}
	}
	os.Remove(wrapper)
}
