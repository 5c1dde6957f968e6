// Package config loads pakk's tool-level configuration from
// ~/.config/pakk/config.toml. The file is optional; every field has a
// working default, so a fresh machine needs no setup beyond the binary.
//
// Project-level state (declared dependencies, installed versions) is NOT
// configuration and lives in pakk.json next to the project; see the
// project package.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pakk/pkg/errors"
)

// Defaults for a config file that is absent or partial.
const (
	DefaultRegistryRepo = "pakk-lang/pakk-registry"
	DefaultCacheTTL     = 24 * time.Hour
)

// Config is the tool-level configuration.
type Config struct {
	// Token authenticates contents-backend requests. The PAKK_TOKEN and
	// GITHUB_TOKEN environment variables override this field, in that order.
	Token string `toml:"token"`

	// Registries lists backends in failover priority order. When empty,
	// a single contents backend against DefaultRegistryRepo is used.
	Registries []Registry `toml:"registries"`

	// CacheTTL controls how long registry responses are cached.
	CacheTTL duration `toml:"cache_ttl"`
}

// Registry configures one backend in the failover chain.
type Registry struct {
	// Type selects the transport convention: "contents" or "lookup".
	Type string `toml:"type"`
	// Repo is the "owner/name" registry repository (contents type).
	Repo string `toml:"repo"`
	// URL is the API base URL (lookup type).
	URL string `toml:"url"`
}

// duration lets TTLs be written as "12h" or "30m" in TOML.
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// TTL returns the configured cache TTL, or DefaultCacheTTL when unset.
func (c *Config) TTL() time.Duration {
	if c.CacheTTL == 0 {
		return DefaultCacheTTL
	}
	return time.Duration(c.CacheTTL)
}

// AuthToken returns the effective token: PAKK_TOKEN, then GITHUB_TOKEN,
// then the config file value.
func (c *Config) AuthToken() string {
	if t := os.Getenv("PAKK_TOKEN"); t != "" {
		return t
	}
	if t := os.Getenv("GITHUB_TOKEN"); t != "" {
		return t
	}
	return c.Token
}

// Load reads the config file at path, or the default location when path
// is empty. A missing file yields the zero Config (all defaults); a
// present but invalid file is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing %s", path)
	}

	for _, r := range cfg.Registries {
		if err := validateRegistry(r); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func validateRegistry(r Registry) error {
	switch r.Type {
	case "contents":
		if r.Repo == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "contents registry requires repo")
		}
	case "lookup":
		if err := errors.ValidateURL(r.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "lookup registry url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown registry type %q", r.Type)
	}
	return nil
}

// DefaultPath returns the XDG-style config file location,
// ~/.config/pakk/config.toml (honoring XDG_CONFIG_HOME).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "pakk", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pakk", "config.toml"), nil
}
