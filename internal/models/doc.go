// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

/*
Package models defines the data structures shared by the store and its
callers.

Domain:
  - Backup, Setting, Filter: a configured backup job and its child sets
  - Schedule: when a backup runs, linked to it by an "ID=<n>" tag
  - Notification, NotificationType: the operator-visible message log
  - TempFile: a temporary file registered for later cleanup

Operational:
  - APIResponse, Metadata, APIError: the JSON envelope used by the
    operational HTTP endpoint
  - HealthStatus, StoreStatus: payloads served by that endpoint

Identity conventions:
  - Persisted backups carry a decimal positive integer ID; temporary
    backups carry a generated UUID.
  - AnyBackupID scopes global settings and filters; ApplicationSettingsID
    scopes application-wide settings. Neither names a real backup.
*/
package models
