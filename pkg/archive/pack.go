package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/pakk/pkg/errors"
)

// DefaultPackExclusions are directory names skipped by [Pack]: VCS
// metadata, the local archive cache, installed modules, and common
// toolchain clutter that has no place in a published package.
var DefaultPackExclusions = []string{
	".git",
	".pakk_cache",
	"pakk_modules",
	"node_modules",
	".venv",
	"venv",
	"__pycache__",
}

// Pack zips the contents of srcDir into outPath, skipping any directory
// whose base name appears in skipDirs (nil means [DefaultPackExclusions]).
// Entry names inside the archive are relative to srcDir.
func Pack(srcDir, outPath string, skipDirs []string) error {
	if skipDirs == nil {
		skipDirs = DefaultPackExclusions
	}
	skip := make(map[string]bool, len(skipDirs))
	for _, d := range skipDirs {
		skip[d] = true
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating output dir")
	}
	out, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating %s", outPath)
	}
	zw := zip.NewWriter(out)

	walkErr := filepath.WalkDir(srcDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skip[d.Name()] && path != srcDir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == filepath.Base(outPath) {
			return nil // don't pack the archive into itself
		}

		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, f)
		f.Close()
		return err
	})

	if walkErr != nil {
		zw.Close()
		out.Close()
		os.Remove(outPath)
		return errors.Wrap(errors.ErrCodeInternal, walkErr, "packing %s", srcDir)
	}
	if err := zw.Close(); err != nil {
		out.Close()
		os.Remove(outPath)
		return errors.Wrap(errors.ErrCodeInternal, err, "finalizing %s", outPath)
	}
	return out.Close()
}

// ArchiveName builds the conventional archive file name for a package
// release, e.g. "mypkg-1.2.0.zip".
func ArchiveName(name, version string) string {
	return fmt.Sprintf("%s-%s.zip", name, version)
}
