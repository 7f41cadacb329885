// Package config loads quantcache configuration from the YAML config file
// and environment variables. Precedence: CLI flags (applied by the caller)
// over environment variables over the config file over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/quantbench/quantcache/internal/cache"
	"github.com/quantbench/quantcache/internal/logging"
)

// CacheConfig is the cache section of the config file.
type CacheConfig struct {
	// Dir is the cache root directory. Defaults to ~/.quantcache/cache.
	Dir string `yaml:"dir"`

	// Enabled toggles caching.
	Enabled bool `yaml:"enabled"`

	// TTLSeconds is the default entry TTL.
	TTLSeconds int `yaml:"ttl_seconds"`
}

// Config is the full quantcache configuration.
type Config struct {
	Cache   CacheConfig    `yaml:"cache"`
	Logging logging.Config `yaml:"logging"`
}

// DefaultDir returns the quantcache home directory (~/.quantcache).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quantcache"
	}
	return filepath.Join(home, ".quantcache")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Dir:        filepath.Join(DefaultDir(), "cache"),
			Enabled:    true,
			TTLSeconds: cache.DefaultTTLSeconds,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist, then applies environment overrides. A file that
// exists but cannot be parsed is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, unmarshalErr)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays QUANTCACHE_* environment variables onto the config.
// Unset variables leave the file values alone; set-but-invalid values fall
// back to the cache defaults rather than failing.
func (c *Config) applyEnv() {
	if dir := cache.DirFromEnv(); dir != "" {
		c.Cache.Dir = dir
	}
	if os.Getenv(cache.EnvEnabled) != "" {
		c.Cache.Enabled = cache.EnabledFromEnv()
	}
	if os.Getenv(cache.EnvTTLSeconds) != "" {
		c.Cache.TTLSeconds = cache.TTLFromEnv()
	}
}
