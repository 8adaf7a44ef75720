// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/rotisserie/eris"

	"github.com/formresolve/formresolve-mcp/internal/resolve"
)

// Config holds all formresolve configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Catalog CatalogConfig `yaml:"catalog"`
	Store   StoreConfig   `yaml:"store"`
	Server  ServerConfig  `yaml:"server"`
	Resolve ResolveConfig `yaml:"resolve"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

// StoreConfig points at the SQLite report database. An empty path disables
// report storage.
type StoreConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ResolveConfig tunes the field resolver.
type ResolveConfig struct {
	FuzzyMinLength int      `yaml:"fuzzy_min_length"`
	TitlePrefixes  []string `yaml:"title_prefixes"`
}

// ValidLogLevels lists the accepted log levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Server: ServerConfig{
			Name:    "formresolve",
			Version: "v0.1.0",
		},
		Resolve: ResolveConfig{
			FuzzyMinLength: resolve.DefaultFuzzyMinLength,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, eris.Wrap(err, "failed to parse config")
			}
		case !os.IsNotExist(err):
			return nil, eris.Wrap(err, "failed to read config")
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("FORMRESOLVE_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if path := os.Getenv("FORMRESOLVE_CATALOG"); path != "" {
		c.Catalog.Path = path
	}
	if path := os.Getenv("FORMRESOLVE_DB"); path != "" {
		c.Store.Path = path
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !slices.Contains(ValidLogLevels, c.Log.Level) {
		return eris.Errorf("invalid log level: %s (valid: %v)", c.Log.Level, ValidLogLevels)
	}
	if c.Resolve.FuzzyMinLength < 1 {
		return eris.Errorf("resolve.fuzzy_min_length must be at least 1, got %d", c.Resolve.FuzzyMinLength)
	}
	return nil
}

// Normalizer returns a title normalizer using the configured prefixes, or
// the default prefixes when none are configured.
func (c *Config) Normalizer() *resolve.Normalizer {
	return resolve.NewNormalizer(c.Resolve.TitlePrefixes...)
}

// ResolverOptions translates the resolve section into resolver options.
func (c *Config) ResolverOptions() []resolve.Option {
	return []resolve.Option{
		resolve.WithFuzzyMinLength(c.Resolve.FuzzyMinLength),
		resolve.WithNormalizer(c.Normalizer()),
	}
}
