// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

/*
Package config loads Safehold's process configuration with koanf.

# Configuration Sources

Sources are layered, later ones winning:
  - built-in defaults (structs provider)
  - YAML file from CONFIG_PATH or DefaultConfigPaths (file provider)
  - environment variables (env provider)

# Environment Variables

	SAFEHOLD_DB_DRIVER          sqlite | duckdb | postgres
	SAFEHOLD_DB_PATH            database file for embedded drivers
	SAFEHOLD_DB_DSN             postgres connection string
	SAFEHOLD_DB_MAX_OPEN_CONNS  postgres pool size
	SAFEHOLD_DB_LENIENT_ENUMS   tolerate unknown enum text in old databases
	SAFEHOLD_DATA_DIR           directory for generated per-backup databases
	SAFEHOLD_MAX_PATH_ATTEMPTS  attempts when allocating a unique database name
	SAFEHOLD_TEMP_PURGE_INTERVAL  how often expired temporary files are removed
	SAFEHOLD_METRICS_ADDR       listen address for /metrics and /healthz
	SAFEHOLD_SHUTDOWN_TIMEOUT   graceful shutdown budget
	SAFEHOLD_SIGNAL_INTERVAL    minimum spacing between change notifications
	SAFEHOLD_CORS_ORIGINS       comma-separated origins allowed to read the status endpoints
	SAFEHOLD_RATE_LIMIT_REQUESTS  requests per window per client IP, 0 disables
	SAFEHOLD_RATE_LIMIT_WINDOW  rate limit window
	LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Unmapped variables are ignored.
*/
package config
