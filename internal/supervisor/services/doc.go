// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

/*
Package services provides suture.Service implementations for Safehold's
long-running components.

# Available Services

Status Server (StatusServerService):
  - Runs the *http.Server carrying /healthz, /readyz, /api/v1/status and
    /metrics on server.metrics_addr
  - Logs listen and stop events with the bound address; drains requests
    within the shutdown timeout on cancellation

Change Watcher (ChangeWatcherService):
  - Drains the store's change signal (changes.Coalescer)
  - Reads ConfigChanges and NotificationChanges and hands the snapshot to a
    handler, at most once per interval (golang.org/x/time/rate)
  - Drops wake-ups whose counters did not move

Temp File Purge (TempFilePurgeService):
  - Lists Store.GetExpiredTempFiles on a ticker, removes each file, then
    deletes its row; rows whose file could not be removed are retried
  - Files already missing from disk count as removed

# Error Handling

Return values determine supervisor behavior:

	error       -> service crashed, supervisor restarts it with backoff
	ctx.Err()   -> shutdown requested, normal termination

# Service Identification

Every service implements fmt.Stringer so suture log lines name it:
"status-server", "change-watcher", "tempfile-purge".
*/
package services
