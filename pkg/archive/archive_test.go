package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/pakk/pkg/errors"
	"github.com/matzehuels/pakk/pkg/registry"
)

// writeZip creates a zip file at path with the given name → content entries.
func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

// writeTarGz creates a .tar.gz file at path with the given entries.
func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		if err := tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestUnpack_Zip(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "pkg.zip")
	writeZip(t, archivePath, map[string]string{
		"main.txt":       "hello",
		"lib/helper.txt": "helper",
		"metadata.json":  `{"name":"pkg"}`,
	})

	dest := filepath.Join(dir, "out")
	if err := Unpack(archivePath, dest); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}

	if got := readFile(t, filepath.Join(dest, "main.txt")); got != "hello" {
		t.Errorf("main.txt = %q", got)
	}
	if got := readFile(t, filepath.Join(dest, "lib", "helper.txt")); got != "helper" {
		t.Errorf("lib/helper.txt = %q", got)
	}
}

func TestUnpack_TarGz(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "pkg.tar.gz")
	writeTarGz(t, archivePath, map[string]string{
		"main.txt": "hello",
	})

	dest := filepath.Join(dir, "out")
	if err := Unpack(archivePath, dest); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "main.txt")); got != "hello" {
		t.Errorf("main.txt = %q", got)
	}
}

func TestUnpack_TarGzDotPrefixedEntries(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "pkg.tar.gz")

	// Layout produced by "tar -czf pkg.tar.gz -C dir .": a leading "./"
	// directory entry, every path prefixed with "./".
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	if err := tw.WriteHeader(&tar.Header{Name: "./", Mode: 0o755, Typeflag: tar.TypeDir}); err != nil {
		t.Fatal(err)
	}
	if err := tw.WriteHeader(&tar.Header{Name: "./lib/", Mode: 0o755, Typeflag: tar.TypeDir}); err != nil {
		t.Fatal(err)
	}
	content := "hello"
	if err := tw.WriteHeader(&tar.Header{Name: "./main.txt", Mode: 0o644, Size: int64(len(content))}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(archivePath, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "out")
	if err := Unpack(archivePath, dest); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "main.txt")); got != "hello" {
		t.Errorf("main.txt = %q", got)
	}
	if info, err := os.Stat(filepath.Join(dest, "lib")); err != nil || !info.IsDir() {
		t.Errorf("lib/ not extracted: %v", err)
	}
}

func TestUnpack_HoistsSingleRoot(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "pkg.zip")
	writeZip(t, archivePath, map[string]string{
		"pkg-1.0.0/main.txt":       "hello",
		"pkg-1.0.0/docs/guide.txt": "guide",
	})

	dest := filepath.Join(dir, "out")
	if err := Unpack(archivePath, dest); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}

	if got := readFile(t, filepath.Join(dest, "main.txt")); got != "hello" {
		t.Errorf("main.txt not hoisted: %q", got)
	}
	if got := readFile(t, filepath.Join(dest, "docs", "guide.txt")); got != "guide" {
		t.Errorf("docs/guide.txt not hoisted: %q", got)
	}
	if _, err := os.Stat(filepath.Join(dest, "pkg-1.0.0")); !os.IsNotExist(err) {
		t.Error("wrapper directory still present after hoist")
	}
}

func TestUnpack_NoHoistWithMultipleRoots(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "pkg.zip")
	writeZip(t, archivePath, map[string]string{
		"a/one.txt": "1",
		"b/two.txt": "2",
	})

	dest := filepath.Join(dir, "out")
	if err := Unpack(archivePath, dest); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "a", "one.txt")); got != "1" {
		t.Errorf("a/one.txt = %q", got)
	}
	if got := readFile(t, filepath.Join(dest, "b", "two.txt")); got != "2" {
		t.Errorf("b/two.txt = %q", got)
	}
}

func TestUnpack_WipesDestination(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "pkg.zip")
	writeZip(t, archivePath, map[string]string{"new.txt": "new"})

	dest := filepath.Join(dir, "out")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(dest, "stale.txt")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Unpack(archivePath, dest); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file survived reinstall")
	}
	if got := readFile(t, filepath.Join(dest, "new.txt")); got != "new" {
		t.Errorf("new.txt = %q", got)
	}
}

func TestUnpack_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "pkg.rar")
	if err := os.WriteFile(archivePath, []byte("not an archive"), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "out")
	err := Unpack(archivePath, dest)
	if !errors.Is(err, errors.ErrCodeExtractFailed) {
		t.Errorf("error = %v, want EXTRACT_FAILED", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("destination left behind after failed extraction")
	}
}

func TestUnpack_CorruptArchive(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "pkg.zip")
	if err := os.WriteFile(archivePath, []byte("this is not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "out")
	err := Unpack(archivePath, dest)
	if !errors.Is(err, errors.ErrCodeExtractFailed) {
		t.Errorf("error = %v, want EXTRACT_FAILED", err)
	}
}

func TestUnpack_RejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.zip")
	writeZip(t, archivePath, map[string]string{
		"../escape.txt": "evil",
	})

	dest := filepath.Join(dir, "out")
	if err := Unpack(archivePath, dest); err == nil {
		t.Fatal("expected error for path traversal entry")
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); !os.IsNotExist(err) {
		t.Error("traversal entry escaped the destination")
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("archive-payload"))
	}))
	defer server.Close()

	dir := t.TempDir()
	client := registry.NewClient(nil, nil)

	path, err := Fetch(context.Background(), client, server.URL, dir, "pkg-1.0.0.zip")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got := readFile(t, path); got != "archive-payload" {
		t.Errorf("payload = %q", got)
	}
	if _, err := os.Stat(path + ".partial"); !os.IsNotExist(err) {
		t.Error("partial file left behind after successful fetch")
	}
}

func TestFetch_RetriesTransientFailure(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	dir := t.TempDir()
	client := registry.NewClient(nil, nil)

	path, err := Fetch(context.Background(), client, server.URL, dir, "pkg.zip")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if attempts != 2 {
		t.Errorf("server hit %d times, want 2 (one retry after the 500)", attempts)
	}
	if got := readFile(t, path); got != "payload" {
		t.Errorf("payload = %q", got)
	}
}

func TestFetch_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	dir := t.TempDir()
	client := registry.NewClient(nil, nil)

	_, err := Fetch(context.Background(), client, server.URL, dir, "pkg.zip")
	if !errors.Is(err, errors.ErrCodeDownloadFailed) {
		t.Errorf("error = %v, want DOWNLOAD_FAILED", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "pkg.zip")); !os.IsNotExist(statErr) {
		t.Error("file created despite failed download")
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	client := registry.NewClient(nil, nil)
	_, err := Fetch(context.Background(), client, "ftp://example.com/x.zip", t.TempDir(), "x.zip")
	if err == nil {
		t.Fatal("expected error for non-http URL")
	}
}

func TestPack_RoundTrip(t *testing.T) {
	src := t.TempDir()
	mustWrite := func(rel, content string) {
		path := filepath.Join(src, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("main.txt", "hello")
	mustWrite("lib/helper.txt", "helper")
	mustWrite(".git/config", "secret")
	mustWrite("pakk_modules/dep/main.txt", "dep")

	outPath := filepath.Join(t.TempDir(), "pkg-1.0.0.zip")
	if err := Pack(src, outPath, nil); err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "out")
	if err := Unpack(outPath, dest); err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}

	if got := readFile(t, filepath.Join(dest, "main.txt")); got != "hello" {
		t.Errorf("main.txt = %q", got)
	}
	if got := readFile(t, filepath.Join(dest, "lib", "helper.txt")); got != "helper" {
		t.Errorf("lib/helper.txt = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dest, ".git")); !os.IsNotExist(err) {
		t.Error(".git packed despite exclusion")
	}
	if _, err := os.Stat(filepath.Join(dest, "pakk_modules")); !os.IsNotExist(err) {
		t.Error("pakk_modules packed despite exclusion")
	}
}

func TestArchiveName(t *testing.T) {
	if got := ArchiveName("leftpad", "1.2.0"); got != "leftpad-1.2.0.zip" {
		t.Errorf("ArchiveName = %q", got)
	}
}
