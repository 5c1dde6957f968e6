// Package cli implements the pakk command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pakk/pkg/buildinfo"
	"github.com/matzehuels/pakk/pkg/config"
	"github.com/matzehuels/pakk/pkg/errors"
	"github.com/matzehuels/pakk/pkg/installer"
	"github.com/matzehuels/pakk/pkg/project"
	"github.com/matzehuels/pakk/pkg/registry"
	"github.com/matzehuels/pakk/pkg/registry/contents"
	"github.com/matzehuels/pakk/pkg/registry/lookup"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "pakk"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "pakk",
		Short:        "Pakk installs packages from versioned registries",
		Long:         `Pakk is a package manager: it resolves version specs against one or more registries, downloads and unpacks release archives into pakk_modules/, and records what is installed in pakk.json.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.installCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Installer Factory
// =============================================================================

// newInstaller wires the full stack for a command invocation: project
// state store, configured registry backends behind a failover, and the
// shared download client.
func (c *CLI) newInstaller() (*installer.Installer, *project.Store, error) {
	projectDir, err := os.Getwd()
	if err != nil {
		return nil, nil, err
	}

	store, err := project.Open(projectDir)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load("")
	if err != nil {
		return nil, nil, err
	}

	backends, err := buildBackends(cfg)
	if err != nil {
		return nil, nil, err
	}

	// Archive downloads are not cached at the HTTP layer; the project's
	// .pakk_cache keeps the downloaded files themselves.
	client := registry.NewClient(nil, nil)

	inst := installer.New(store, registry.NewFailover(backends...), client, projectDir, c.Logger)
	return inst, store, nil
}

// buildBackends constructs the backend chain from config, in failover
// priority order. An empty config yields the default public registry.
func buildBackends(cfg *config.Config) ([]registry.Backend, error) {
	if len(cfg.Registries) == 0 {
		b, err := contents.NewClient(config.DefaultRegistryRepo, cfg.AuthToken(), cfg.TTL())
		if err != nil {
			return nil, err
		}
		return []registry.Backend{b}, nil
	}

	backends := make([]registry.Backend, 0, len(cfg.Registries))
	for _, r := range cfg.Registries {
		var (
			b   registry.Backend
			err error
		)
		switch r.Type {
		case "contents":
			b, err = contents.NewClient(r.Repo, cfg.AuthToken(), cfg.TTL())
		case "lookup":
			b, err = lookup.NewClient(r.URL, cfg.TTL())
		default:
			err = errors.New(errors.ErrCodeInvalidConfig, "unknown registry type %q", r.Type)
		}
		if err != nil {
			return nil, err
		}
		backends = append(backends, b)
	}
	return backends, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pakk/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
