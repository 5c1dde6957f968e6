package contents

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/matzehuels/pakk/pkg/registry"
)

// testClient builds a Client against a test server with caching disabled.
func testClient(baseURL string) *Client {
	return &Client{
		Client:  registry.NewClient(nil, nil),
		baseURL: baseURL,
		repo:    "owner/registry",
	}
}

func TestClient_ListVersions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/registry/contents/packages/leftpad" {
			http.NotFound(w, r)
			return
		}
		// Lexicographic API order; the client must re-sort by triple.
		json.NewEncoder(w).Encode([]contentItem{
			{Name: "1.10.0", Type: "dir"},
			{Name: "1.2.0", Type: "dir"},
			{Name: "2.0.0", Type: "dir"},
			{Name: "README.md", Type: "file"},
		})
	}))
	defer server.Close()

	c := testClient(server.URL)

	versions, err := c.ListVersions(context.Background(), "leftpad")
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}

	want := []string{"2.0.0", "1.10.0", "1.2.0"}
	if !reflect.DeepEqual(versions, want) {
		t.Errorf("versions = %v, want %v", versions, want)
	}
}

func TestClient_ListVersions_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := testClient(server.URL)

	_, err := c.ListVersions(context.Background(), "missing")
	if !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestClient_ResolveArchive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/registry/contents/packages/leftpad/1.2.0" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode([]contentItem{
			{Name: "checksums.txt", Type: "file", DownloadURL: "https://cdn.example.com/checksums.txt"},
			{Name: "leftpad-1.2.0.zip", Type: "file", DownloadURL: "https://cdn.example.com/leftpad-1.2.0.zip"},
		})
	}))
	defer server.Close()

	c := testClient(server.URL)

	arch, err := c.ResolveArchive(context.Background(), "leftpad", "1.2.0")
	if err != nil {
		t.Fatalf("ResolveArchive failed: %v", err)
	}
	if arch.Filename != "leftpad-1.2.0.zip" {
		t.Errorf("filename = %q", arch.Filename)
	}
	if arch.URL != "https://cdn.example.com/leftpad-1.2.0.zip" {
		t.Errorf("url = %q", arch.URL)
	}
}

func TestClient_ResolveArchive_NoArchiveEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]contentItem{
			{Name: "notes.txt", Type: "file", DownloadURL: "https://cdn.example.com/notes.txt"},
		})
	}))
	defer server.Close()

	c := testClient(server.URL)

	_, err := c.ResolveArchive(context.Background(), "leftpad", "1.2.0")
	if !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound when version dir has no archive", err)
	}
}

func TestClient_AuthHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]contentItem{})
	}))
	defer server.Close()

	c := testClient(server.URL)
	c.Client = registry.NewClient(nil, map[string]string{"Authorization": "Bearer secret"})

	if _, err := c.ListVersions(context.Background(), "leftpad"); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}
