// Package installer orchestrates dependency resolution and installation:
// it checks whether a request is already satisfied, discovers and selects
// versions through the registry backend, fetches and unpacks archives,
// records installed versions in the project state store, and recurses
// into each package's declared dependencies with cycle protection.
//
// One Installer serves one project directory. Each top-level operation
// runs under a [Session] whose visited set bounds the recursion.
package installer

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pakk/pkg/archive"
	"github.com/matzehuels/pakk/pkg/errors"
	"github.com/matzehuels/pakk/pkg/project"
	"github.com/matzehuels/pakk/pkg/registry"
	"github.com/matzehuels/pakk/pkg/semver"
)

// Installer installs packages from a registry backend into a project's
// modules directory and keeps the project state store in sync.
type Installer struct {
	store      *project.Store
	backend    registry.Backend
	client     *registry.Client
	cacheDir   string
	modulesDir string
	logger     *log.Logger
}

// New creates an Installer rooted at projectDir. The backend is usually
// a [registry.Failover] wrapping the configured registries; client is
// the HTTP client archives are streamed through. A nil logger discards
// all output.
func New(store *project.Store, backend registry.Backend, client *registry.Client, projectDir string, logger *log.Logger) *Installer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Installer{
		store:      store,
		backend:    backend,
		client:     client,
		cacheDir:   filepath.Join(projectDir, project.CacheDir),
		modulesDir: filepath.Join(projectDir, project.ModulesDir),
		logger:     logger,
	}
}

// ModulesDir returns the directory packages are installed into.
func (in *Installer) ModulesDir() string { return in.modulesDir }

// PackageDir returns the install directory for a named package.
func (in *Installer) PackageDir(name string) string {
	return filepath.Join(in.modulesDir, name)
}

// InstallPackage installs name at the best version satisfying spec,
// then its transitive dependencies. Installing a package whose recorded
// version already satisfies spec is free: no network access happens.
func (in *Installer) InstallPackage(ctx context.Context, name string, spec semver.Spec) error {
	sess := NewSession()
	return in.install(ctx, sess, name, spec, false)
}

// InstallAll installs every requested dependency from the state store.
// When force is false, packages whose recorded version already satisfies
// their spec are skipped without calling into the engine at all.
//
// Failures are collected per package and joined; one broken dependency
// never aborts installation of the rest.
func (in *Installer) InstallAll(ctx context.Context, force bool) error {
	requested := in.store.AllRequested()
	if len(requested) == 0 {
		in.logger.Info("No dependencies to install")
		return nil
	}

	names := make([]string, 0, len(requested))
	for name := range requested {
		names = append(names, name)
	}
	sort.Strings(names)

	in.logger.Infof("Found %d dependencies", len(names))

	sess := NewSession()
	var errs []error
	for _, name := range names {
		// RequestedSpec degrades a corrupted stored spec to "latest", the
		// same policy the update path uses.
		spec, ok := in.store.RequestedSpec(name)
		if !ok {
			continue
		}

		if !force {
			if v, ok := in.store.InstalledVersion(name); ok && (spec.IsLatest() || spec.Satisfies(v)) {
				in.logger.Debugf("%s@%s already installed", name, v)
				continue
			}
		}

		if err := in.install(ctx, sess, name, spec, false); err != nil {
			in.logger.Warnf("install failed: %s: %v", name, err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return stderrors.Join(errs...)
}

// UpdatePackage wipes and reinstalls name at the best version currently
// satisfying its requested spec. This is the only path that re-fetches a
// package whose recorded version already satisfies the spec.
func (in *Installer) UpdatePackage(ctx context.Context, name string) error {
	spec, ok := in.store.RequestedSpec(name)
	if !ok {
		return errors.New(errors.ErrCodeNotADependency, "%s is not a dependency of this project", name)
	}

	if err := in.RemovePackage(name); err != nil {
		return err
	}

	sess := NewSession()
	return in.install(ctx, sess, name, spec, true)
}

// UpdateAll updates every requested dependency, collecting failures the
// same way InstallAll does.
func (in *Installer) UpdateAll(ctx context.Context) error {
	requested := in.store.AllRequested()

	names := make([]string, 0, len(requested))
	for name := range requested {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := in.UpdatePackage(ctx, name); err != nil {
			in.logger.Warnf("update failed: %s: %v", name, err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return stderrors.Join(errs...)
}

// RemovePackage deletes the package's directory under the modules dir.
// Clearing the state store entry is the caller's responsibility; deleting
// the directory alone does not imply it.
func (in *Installer) RemovePackage(name string) error {
	if err := errors.ValidatePackageName(name); err != nil {
		return err
	}
	return os.RemoveAll(in.PackageDir(name))
}

// install runs the per-package state machine. skipSatisfied bypasses the
// already-satisfied short-circuit (update path only).
func (in *Installer) install(ctx context.Context, sess *Session, name string, spec semver.Spec, skipSatisfied bool) error {
	if err := errors.ValidatePackageName(name); err != nil {
		return err
	}
	if !sess.Visit(name) {
		// Already being installed higher up the recursion; cycle break.
		return nil
	}

	logger := in.logger.With("session", sess.ID)

	// Step 1: already satisfied, no network access.
	if !skipSatisfied {
		if v, ok := in.store.InstalledVersion(name); ok && (spec.IsLatest() || spec.Satisfies(v)) {
			logger.Debugf("%s@%s already installed", name, v)
			return nil
		}
	}

	// Step 2: version discovery. A definitive not-found from the registry
	// and an empty version list mean the same thing to the caller.
	versions, err := in.backend.ListVersions(ctx, name)
	if err != nil {
		if stderrors.Is(err, registry.ErrNotFound) {
			return errors.New(errors.ErrCodePackageNotFound, "package %s not found in registry", name)
		}
		return err
	}
	if len(versions) == 0 {
		return errors.New(errors.ErrCodePackageNotFound, "package %s not found in registry", name)
	}

	// Step 3: version selection. Discovery order is highest-first, so
	// "latest" is simply the first entry.
	var chosen string
	if spec.IsLatest() {
		chosen = versions[0]
	} else {
		var ok bool
		chosen, ok = semver.SelectBest(versions, spec)
		if !ok {
			return errors.New(errors.ErrCodeNoMatchingVersion, "no version of %s matches %s", name, spec)
		}
	}
	version, err := semver.ParseVersion(chosen)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInstallFailed, err, "registry returned unparsable version %q for %s", chosen, name)
	}

	// Step 4: fetch + unpack. Failures abort this package only; siblings
	// already installed in this session are not rolled back.
	if err := in.fetchAndUnpack(ctx, name, chosen); err != nil {
		return errors.Wrap(errors.ErrCodeInstallFailed, err, "installing %s@%s", name, chosen)
	}

	// Step 5: record before recursing, so cycles resolve through the
	// satisfied check instead of looping.
	if err := in.store.SetInstalledVersion(name, version); err != nil {
		return errors.Wrap(errors.ErrCodeInstallFailed, err, "recording %s@%s", name, chosen)
	}
	logger.Infof("Installed %s@%s", name, chosen)

	// Step 6: transitive dependencies from the freshly unpacked descriptor.
	return in.installDependencies(ctx, sess, name)
}

// installDependencies reads the unpacked package's descriptor and
// recurses into each declared dependency. A dependency that fails to
// install is logged and skipped; it does not fail the parent, matching
// the batch semantics of the engine (errors stay local to one package's
// attempt).
func (in *Installer) installDependencies(ctx context.Context, sess *Session, name string) error {
	meta, err := project.ReadMetadata(in.PackageDir(name))
	if err != nil {
		in.logger.Warnf("unreadable metadata for %s: %v", name, err)
		return nil
	}
	if len(meta.Dependencies) == 0 {
		return nil
	}

	deps := make([]string, 0, len(meta.Dependencies))
	for dep := range meta.Dependencies {
		deps = append(deps, dep)
	}
	sort.Strings(deps)

	in.logger.Debugf("Installing dependencies for %s: %v", name, deps)

	for _, dep := range deps {
		if sess.Visited(dep) {
			continue
		}
		spec, err := semver.ParseSpec(meta.Dependencies[dep])
		if err != nil {
			in.logger.Warnf("skipping %s: declared by %s with malformed spec %q", dep, name, meta.Dependencies[dep])
			continue
		}
		if v, ok := in.store.InstalledVersion(dep); ok && (spec.IsLatest() || spec.Satisfies(v)) {
			continue
		}
		if err := in.install(ctx, sess, dep, spec, false); err != nil {
			in.logger.Warnf("dependency install failed: %s (required by %s): %v", dep, name, err)
		}
	}
	return nil
}

// fetchAndUnpack resolves the archive location through the backend,
// downloads it into the project cache, and extracts it into the package
// directory.
func (in *Installer) fetchAndUnpack(ctx context.Context, name, version string) error {
	arch, err := in.backend.ResolveArchive(ctx, name, version)
	if err != nil {
		return err
	}

	cacheName := fmt.Sprintf("%s-%s-%s", name, version, arch.Filename)
	in.logger.Debugf("Downloading %s@%s from %s", name, version, arch.URL)

	archivePath, err := archive.Fetch(ctx, in.client, arch.URL, in.cacheDir, cacheName)
	if err != nil {
		return err
	}
	return archive.Unpack(archivePath, in.PackageDir(name))
}

// Publish creates the release archive for the current project in the
// local cache and returns its path. Uploading is a manual step against
// the registry repository; the engine only produces the artifact.
func (in *Installer) Publish(projectDir string) (string, error) {
	name := archive.ArchiveName(in.store.Name(), in.store.Version())
	outPath := filepath.Join(in.cacheDir, name)
	if err := archive.Pack(projectDir, outPath, nil); err != nil {
		return "", err
	}
	return outPath, nil
}
