// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/safehold/internal/validation"
)

// Config holds all process configuration.
//
// Loading order (see LoadWithKoanf):
//  1. Defaults
//  2. Optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment variables
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Storage  StorageConfig  `koanf:"storage"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig selects and tunes the relational backend.
type DatabaseConfig struct {
	// Driver is one of sqlite, duckdb, postgres.
	Driver string `koanf:"driver" json:"driver" validate:"oneof=sqlite duckdb postgres"`

	// Path is the database file for embedded drivers. ":memory:" is allowed.
	Path string `koanf:"path" json:"path"`

	// DSN is the connection string for postgres.
	DSN string `koanf:"dsn" json:"dsn"`

	// MaxOpenConns caps the pool for postgres. Embedded drivers always use one
	// connection.
	MaxOpenConns int `koanf:"max_open_conns" json:"max_open_conns" validate:"gte=0"`

	// LenientEnums maps unknown stored enum text to the first declared value
	// instead of failing the read. Only for databases written by older builds.
	LenientEnums bool `koanf:"lenient_enums" json:"lenient_enums"`
}

// StorageConfig controls where per-backup local databases are allocated.
type StorageConfig struct {
	DataDir         string `koanf:"data_dir" json:"data_dir" label:"storage data dir" validate:"notblank"`
	MaxPathAttempts int    `koanf:"max_path_attempts" json:"max_path_attempts" validate:"gte=1"`

	// TempPurgeInterval is how often expired temporary files are removed.
	// Zero disables the purge service.
	TempPurgeInterval time.Duration `koanf:"temp_purge_interval" json:"temp_purge_interval"`
}

// ServerConfig holds the operational HTTP endpoint and change-watcher settings.
type ServerConfig struct {
	MetricsAddr     string        `koanf:"metrics_addr" json:"metrics_addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`

	// SignalInterval is the minimum spacing between change notifications
	// delivered to watchers. Bursts inside one interval are coalesced.
	SignalInterval time.Duration `koanf:"signal_interval" json:"signal_interval"`

	// CORSOrigins lists origins allowed to poll the status endpoints from a
	// browser. Empty sends no CORS headers.
	CORSOrigins []string `koanf:"cors_origins" json:"cors_origins"`

	// RateLimitRequests per RateLimitWindow per client IP. Zero disables.
	RateLimitRequests int           `koanf:"rate_limit_requests" json:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" json:"rate_limit_window"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" json:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" json:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller" json:"caller"`
}

// Validate checks field rules and the cross-field driver requirements.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the %s driver", c.Database.Driver)
		}
	}

	if c.Storage.TempPurgeInterval < 0 {
		return fmt.Errorf("storage.temp_purge_interval must not be negative")
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive when rate limiting is enabled")
	}
	if c.Server.SignalInterval < 0 {
		return fmt.Errorf("server.signal_interval must not be negative")
	}
	return nil
}

// Load is the entry point used by cmd/server.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
