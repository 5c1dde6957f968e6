package registry

import (
	"context"
	"sync"

	"github.com/matzehuels/pakk/pkg/errors"
)

// Failover chains backends in priority order. Each logical operation is
// attempted against each backend at most once, in order; any failure
// moves to the next backend, never retries the same one in place. With N
// configured backends an operation costs at most N backend attempts.
//
// The order is sticky: once a backend succeeds, later operations in the
// same Failover try it first until it fails again, at which point the
// walk resumes from the configured priority order. This keeps a session
// from paying the primary's timeout on every call after it has gone dark.
//
// Failover implements [Backend] itself, so the installer can hold a
// single Backend regardless of how many registries are configured.
type Failover struct {
	mu        sync.Mutex
	backends  []Backend
	preferred int // index into backends, tried first
}

// NewFailover creates a Failover over backends in priority order.
// The slice must not be empty.
func NewFailover(backends ...Backend) *Failover {
	return &Failover{backends: backends}
}

// Name identifies the failover group in logs.
func (f *Failover) Name() string { return "failover" }

// Backends returns the configured backends in priority order.
func (f *Failover) Backends() []Backend { return f.backends }

// ListVersions tries each backend until one returns a version list.
func (f *Failover) ListVersions(ctx context.Context, pkg string) ([]string, error) {
	var versions []string
	err := f.do(func(b Backend) error {
		var err error
		versions, err = b.ListVersions(ctx, pkg)
		return err
	})
	return versions, err
}

// ResolveArchive tries each backend until one resolves the archive.
func (f *Failover) ResolveArchive(ctx context.Context, pkg, version string) (*Archive, error) {
	var archive *Archive
	err := f.do(func(b Backend) error {
		var err error
		archive, err = b.ResolveArchive(ctx, pkg, version)
		return err
	})
	return archive, err
}

// do runs op against each backend in sticky-preferred order. If every
// backend fails, the returned error carries the last backend's error
// under ErrCodeRegistryUnavailable.
func (f *Failover) do(op func(Backend) error) error {
	if len(f.backends) == 0 {
		return errors.New(errors.ErrCodeRegistryUnavailable, "no registry backends configured")
	}
	order := f.attemptOrder()

	var lastErr error
	for _, idx := range order {
		b := f.backends[idx]
		if err := op(b); err != nil {
			lastErr = err
			continue
		}
		f.setPreferred(idx)
		return nil
	}
	return errors.Wrap(errors.ErrCodeRegistryUnavailable, lastErr, "all %d registry backends failed", len(f.backends))
}

// attemptOrder returns backend indices with the preferred one first and
// the rest in configured priority order.
func (f *Failover) attemptOrder() []int {
	f.mu.Lock()
	preferred := f.preferred
	f.mu.Unlock()

	order := make([]int, 0, len(f.backends))
	order = append(order, preferred)
	for i := range f.backends {
		if i != preferred {
			order = append(order, i)
		}
	}
	return order
}

func (f *Failover) setPreferred(idx int) {
	f.mu.Lock()
	f.preferred = idx
	f.mu.Unlock()
}
