// Package config provides configuration loading for the block manager and
// its backing stores.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/ShouryaAnand/sawtooth-core/blockstore"
	"github.com/ShouryaAnand/sawtooth-core/types"
)

// Config is the main configuration for the block manager.
type Config struct {
	Stores  []StoreConfig `toml:"stores"`
	Metrics MetricsConfig `toml:"metrics"`
	Logging LoggingConfig `toml:"logging"`
}

// StoreConfig describes one named backing store.
type StoreConfig struct {
	// Name is the registry name for the store. Must be a valid identifier
	// and unique across the configuration.
	Name string `toml:"name"`

	// Backend is the storage backend to use ("memory", "leveldb" or
	// "badgerdb").
	Backend string `toml:"backend"`

	// Path is the directory path for on-disk backends. Ignored for the
	// memory backend.
	Path string `toml:"path"`

	// SyncWrites ensures durability by syncing writes to disk.
	// Only honored by the badgerdb backend.
	SyncWrites bool `toml:"sync_writes"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	// Enabled turns on Prometheus metrics collection.
	Enabled bool `toml:"enabled"`

	// Namespace is the metrics namespace prefix.
	Namespace string `toml:"namespace"`

	// ListenAddr is the address for the metrics HTTP endpoint.
	ListenAddr string `toml:"listen_addr"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `toml:"level"`

	// Format is the output format ("text" or "json").
	Format string `toml:"format"`
}

// DefaultConfig returns a configuration with sensible defaults: a single
// LevelDB commit store.
func DefaultConfig() *Config {
	return &Config{
		Stores: []StoreConfig{
			{
				Name:    "commit",
				Backend: blockstore.BackendLevelDB,
				Path:    "data/blockstore",
			},
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			Namespace:  "block_manager",
			ListenAddr: ":9090",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a TOML file, applying defaults for
// missing sections.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Stores) == 0 {
		return fmt.Errorf("at least one store must be configured")
	}

	seen := make(map[string]struct{}, len(c.Stores))
	for i := range c.Stores {
		if err := c.Stores[i].Validate(); err != nil {
			return fmt.Errorf("store %d: %w", i, err)
		}
		if _, dup := seen[c.Stores[i].Name]; dup {
			return fmt.Errorf("store %d: duplicate name %q", i, c.Stores[i].Name)
		}
		seen[c.Stores[i].Name] = struct{}{}
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Validate checks a store configuration.
func (c *StoreConfig) Validate() error {
	if err := types.ValidateStoreName(c.Name); err != nil {
		return err
	}
	switch c.Backend {
	case blockstore.BackendMemory:
	case blockstore.BackendLevelDB, blockstore.BackendBadgerDB:
		if c.Path == "" {
			return fmt.Errorf("backend %q requires a path", c.Backend)
		}
	default:
		return fmt.Errorf("unknown backend: %q", c.Backend)
	}
	return nil
}

// Validate checks the logging configuration.
func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %q", c.Level)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %q", c.Format)
	}
	return nil
}

// WriteConfigFile writes the configuration to a TOML file, creating parent
// directories as needed.
func WriteConfigFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}
