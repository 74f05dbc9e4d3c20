// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

/*
Package main is the entry point for the Safehold server.

Safehold is the configuration store behind a backup orchestration server.
It persists backup jobs, their schedules, per-job settings, filters,
sources and metadata, and an operator-visible notification log.

# Application Architecture

	RootSupervisor ("safehold")
	├── StoreSupervisor ("store-layer")
	│   └── Temp file purge (SAFEHOLD_TEMP_PURGE_INTERVAL, 0 disables)
	├── EventsSupervisor ("events-layer")
	│   └── Change watcher (logs counter movements)
	└── APISupervisor ("api-layer")
	    └── Operational HTTP endpoint (SAFEHOLD_METRICS_ADDR, "" disables)

Initialization order:

 1. Configuration: koanf with defaults, YAML file and environment
 2. Logging: zerolog with JSON or console output
 3. Database: sqlite (default), duckdb or postgres, schema migrated on open
 4. Store: mutex-serialized configuration store with a coalescing change signal
 5. Supervisor tree: suture v4, events logged through sutureslog

# Shutdown

SIGINT or SIGTERM cancels the root context. Services stop within
SAFEHOLD_SHUTDOWN_TIMEOUT; any that do not are reported before exit.
*/
package main
