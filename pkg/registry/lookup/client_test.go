package lookup

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
	}
}

func TestClient_ListVersions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/versions" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("package"); got != "leftpad" {
			t.Errorf("package param = %q", got)
		}
		json.NewEncoder(w).Encode(versionsResponse{Versions: []string{"1.0.0", "2.0.0", "1.5.0"}})
	}))
	defer server.Close()

	c := testClient(server.URL)

	versions, err := c.ListVersions(context.Background(), "leftpad")
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	want := []string{"2.0.0", "1.5.0", "1.0.0"}
	if !reflect.DeepEqual(versions, want) {
		t.Errorf("versions = %v, want %v (sorted highest first)", versions, want)
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
		if r.URL.Path != "/v1/download" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("package") != "leftpad" || q.Get("version") != "1.5.0" {
			t.Errorf("query = %v", q)
		}
		json.NewEncoder(w).Encode(downloadResponse{
			URL:      "https://cdn.example.com/leftpad-1.5.0.zip",
			Filename: "leftpad-1.5.0.zip",
		})
	}))
	defer server.Close()

	c := testClient(server.URL)

	arch, err := c.ResolveArchive(context.Background(), "leftpad", "1.5.0")
	if err != nil {
		t.Fatalf("ResolveArchive failed: %v", err)
	}
	if arch.URL != "https://cdn.example.com/leftpad-1.5.0.zip" || arch.Filename != "leftpad-1.5.0.zip" {
		t.Errorf("archive = %+v", arch)
	}
}

func TestClient_ResolveArchive_EmptyURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(downloadResponse{})
	}))
	defer server.Close()

	c := testClient(server.URL)

	_, err := c.ResolveArchive(context.Background(), "leftpad", "9.9.9")
	if !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound for empty download URL", err)
	}
}

func TestClient_QueryEscaping(t *testing.T) {
	var gotPkg string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPkg = r.URL.Query().Get("package")
		json.NewEncoder(w).Encode(versionsResponse{Versions: []string{"1.0.0"}})
	}))
	defer server.Close()

	c := testClient(server.URL)

	if _, err := c.ListVersions(context.Background(), "weird name&x=1"); err != nil {
		t.Fatal(err)
	}
	if gotPkg != "weird name&x=1" {
		t.Errorf("package param round-tripped as %q", gotPkg)
	}
}
