// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"safehold.yaml",
	"safehold.yml",
	"/etc/safehold/config.yaml",
	"/etc/safehold/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:       "sqlite",
			Path:         "/data/safehold.sqlite",
			MaxOpenConns: 10,
		},
		Storage: StorageConfig{
			DataDir:           "/data",
			MaxPathAttempts:   100,
			TempPurgeInterval: time.Hour,
		},
		Server: ServerConfig{
			MetricsAddr:     ":9470",
			ShutdownTimeout: 10 * time.Second,
			SignalInterval:  250 * time.Millisecond,

			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf layers defaults, an optional YAML file and environment
// variables (highest priority), then validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when set from the
// environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits string values at sliceConfigPaths. Values
// already loaded as lists (from YAML) are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment names to koanf paths.
var envMappings = map[string]string{
	"safehold_db_driver":         "database.driver",
	"safehold_db_path":           "database.path",
	"safehold_db_dsn":            "database.dsn",
	"safehold_db_max_open_conns": "database.max_open_conns",
	"safehold_db_lenient_enums":  "database.lenient_enums",

	"safehold_data_dir":            "storage.data_dir",
	"safehold_max_path_attempts":   "storage.max_path_attempts",
	"safehold_temp_purge_interval": "storage.temp_purge_interval",

	"safehold_metrics_addr":     "server.metrics_addr",
	"safehold_shutdown_timeout": "server.shutdown_timeout",
	"safehold_signal_interval":  "server.signal_interval",

	"safehold_cors_origins":        "server.cors_origins",
	"safehold_rate_limit_requests": "server.rate_limit_requests",
	"safehold_rate_limit_window":   "server.rate_limit_window",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc returns "" for unmapped keys so unrelated environment
// variables never reach the config tree.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
