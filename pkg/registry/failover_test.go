package registry

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/matzehuels/pakk/pkg/errors"
)

// fakeBackend scripts per-call outcomes and records how often it was hit.
type fakeBackend struct {
	name     string
	versions []string
	err      error
	calls    int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) ListVersions(ctx context.Context, pkg string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.versions, nil
}

func (f *fakeBackend) ResolveArchive(ctx context.Context, pkg, version string) (*Archive, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &Archive{URL: "https://example.com/" + pkg + ".zip", Filename: pkg + ".zip"}, nil
}

func TestFailover_PrimarySucceeds(t *testing.T) {
	primary := &fakeBackend{name: "primary", versions: []string{"1.0.0"}}
	secondary := &fakeBackend{name: "secondary", versions: []string{"2.0.0"}}
	f := NewFailover(primary, secondary)

	versions, err := f.ListVersions(context.Background(), "pkg")
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(versions) != 1 || versions[0] != "1.0.0" {
		t.Errorf("versions = %v, want primary's", versions)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary hit %d times, want 0", secondary.calls)
	}
}

func TestFailover_FallsThrough(t *testing.T) {
	primary := &fakeBackend{name: "primary", err: stderrors.New("down")}
	secondary := &fakeBackend{name: "secondary", versions: []string{"2.0.0"}}
	f := NewFailover(primary, secondary)

	versions, err := f.ListVersions(context.Background(), "pkg")
	if err != nil {
		t.Fatalf("ListVersions failed: %v", err)
	}
	if len(versions) != 1 || versions[0] != "2.0.0" {
		t.Errorf("versions = %v, want secondary's", versions)
	}
	if primary.calls != 1 {
		t.Errorf("primary hit %d times, want exactly 1 (no in-place retry)", primary.calls)
	}
}

func TestFailover_StickyPreference(t *testing.T) {
	primary := &fakeBackend{name: "primary", err: stderrors.New("down")}
	secondary := &fakeBackend{name: "secondary", versions: []string{"2.0.0"}}
	f := NewFailover(primary, secondary)

	// First call fails over to secondary and marks it preferred.
	if _, err := f.ListVersions(context.Background(), "pkg"); err != nil {
		t.Fatal(err)
	}

	// Second call goes straight to secondary, skipping the dead primary.
	if _, err := f.ListVersions(context.Background(), "pkg"); err != nil {
		t.Fatal(err)
	}
	if primary.calls != 1 {
		t.Errorf("primary hit %d times, want 1 (preference moved to secondary)", primary.calls)
	}
	if secondary.calls != 2 {
		t.Errorf("secondary hit %d times, want 2", secondary.calls)
	}
}

func TestFailover_PreferredFailureResumesOrder(t *testing.T) {
	primary := &fakeBackend{name: "primary", versions: []string{"1.0.0"}}
	secondary := &fakeBackend{name: "secondary", versions: []string{"2.0.0"}}
	f := NewFailover(primary, secondary)

	// Move preference to secondary.
	primary.err = stderrors.New("down")
	if _, err := f.ListVersions(context.Background(), "pkg"); err != nil {
		t.Fatal(err)
	}

	// Secondary dies, primary recovers: the walk resumes from configured
	// order and lands back on primary.
	primary.err = nil
	secondary.err = stderrors.New("down")
	versions, err := f.ListVersions(context.Background(), "pkg")
	if err != nil {
		t.Fatal(err)
	}
	if versions[0] != "1.0.0" {
		t.Errorf("versions = %v, want primary's after recovery", versions)
	}
}

func TestFailover_AllFail(t *testing.T) {
	primary := &fakeBackend{name: "primary", err: stderrors.New("down")}
	secondary := &fakeBackend{name: "secondary", err: stderrors.New("also down")}
	f := NewFailover(primary, secondary)

	_, err := f.ListVersions(context.Background(), "pkg")
	if err == nil {
		t.Fatal("expected error when every backend fails")
	}
	if !errors.Is(err, errors.ErrCodeRegistryUnavailable) {
		t.Errorf("error code = %v, want REGISTRY_UNAVAILABLE", errors.GetCode(err))
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("calls = %d/%d, want exactly one attempt per backend", primary.calls, secondary.calls)
	}
}

func TestFailover_NoBackends(t *testing.T) {
	f := NewFailover()
	_, err := f.ListVersions(context.Background(), "pkg")
	if !errors.Is(err, errors.ErrCodeRegistryUnavailable) {
		t.Errorf("error = %v, want REGISTRY_UNAVAILABLE", err)
	}
}

func TestFailover_ResolveArchive(t *testing.T) {
	primary := &fakeBackend{name: "primary", err: stderrors.New("down")}
	secondary := &fakeBackend{name: "secondary"}
	f := NewFailover(primary, secondary)

	arch, err := f.ResolveArchive(context.Background(), "pkg", "1.0.0")
	if err != nil {
		t.Fatalf("ResolveArchive failed: %v", err)
	}
	if arch.Filename != "pkg.zip" {
		t.Errorf("archive = %+v", arch)
	}
}
