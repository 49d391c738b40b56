// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers an optional YAML file and WIKIDLE_ environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"time"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DocumentsPath is the YAML catalog of daily documents.
	DocumentsPath string `koanf:"documents_path"`

	// Timezone decides when a new puzzle day starts.
	Timezone string `koanf:"timezone"`

	// StoreDriver selects the result store: memory, sqlite or postgres.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is the data source for sql store drivers.
	StoreDSN string `koanf:"store_dsn"`

	// LeaderboardLimit caps the entries per leaderboard category.
	LeaderboardLimit int `koanf:"leaderboard_limit"`

	// MaxGuessLength bounds a guessed word, in characters.
	MaxGuessLength int `koanf:"max_guess_length"`

	// RefreshQueueSize bounds the leaderboard refresh queue.
	RefreshQueueSize int `koanf:"refresh_queue_size"`

	// RefreshWorkers sets the number of leaderboard refresh workers.
	RefreshWorkers int `koanf:"refresh_workers"`

	// LiveEnabled serves the websocket leaderboard feed.
	LiveEnabled bool `koanf:"live_enabled"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        LogFormatText,
		Addr:             ":9080",
		DocumentsPath:    "documents.yaml",
		Timezone:         "UTC",
		StoreDriver:      StoreMemory,
		LeaderboardLimit: 20,
		MaxGuessLength:   100,
		RefreshQueueSize: 64,
		RefreshWorkers:   1,
		LiveEnabled:      true,
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Validate checks that the configuration can start a server.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DocumentsPath == "":
		return fmt.Errorf("%w: documents_path must not be empty", ErrInvalidConfig)
	case c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.LeaderboardLimit < 1:
		return fmt.Errorf("%w: leaderboard_limit must be >= 1", ErrInvalidConfig)
	case c.MaxGuessLength < 1:
		return fmt.Errorf("%w: max_guess_length must be >= 1", ErrInvalidConfig)
	case c.RefreshQueueSize < 1:
		return fmt.Errorf("%w: refresh_queue_size must be >= 1", ErrInvalidConfig)
	case c.RefreshWorkers < 1:
		return fmt.Errorf("%w: refresh_workers must be >= 1", ErrInvalidConfig)
	}

	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite, StorePostgres:
		if c.StoreDSN == "" {
			return fmt.Errorf("%w: store_dsn is required for %s", ErrInvalidConfig, c.StoreDriver)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}

	_, err := c.Location()
	return err
}
