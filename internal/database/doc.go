// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

// Package database is the persistence layer of Safehold: backup
// definitions, their schedules, settings and filters, the notification log
// and temporary file bookkeeping.
//
// # Architecture
//
// The package is organized in layers:
//
// Storage plumbing:
//   - dialect.go: SQL differences between SQLite, DuckDB and PostgreSQL
//   - database.go: connection lifecycle, transactions, statement metrics
//   - migrations.go: versioned schema migrations
//
// Row mapping and writes:
//   - mapper.go: compile-time column descriptors (Table[T], Column[T])
//   - tables.go: the descriptors for every stored entity
//   - upsert.go: the overwrite-then-write pattern with identity back-fill
//   - tags.go: exact tag membership lookups over comma-joined tag columns
//
// Domain operations (all on *Store):
//   - store_backups.go: backup lifecycle, schedule merge, cascading delete
//   - backup_validation.go: option rules checked before any write
//   - store_settings.go: per-backup, global and application settings
//   - store_schedules.go: schedule CRUD
//   - store_notifications.go, notification_policy.go: notification log
//   - store_tempfiles.go: temporary file registry with expiry
//   - registry.go: in-memory temporary backups
//   - export.go: export bundles
//
// # Transactions
//
// Two entry points exist for multi-row writes. OverwriteAndUpdate opens,
// commits and on failure rolls back its own transaction.
// OverwriteAndUpdateTx joins a transaction opened by the caller and never
// ends it. Only the code that called BeginTx (or WithTx) finishes a
// transaction.
//
// # Thread Safety
//
// Store holds one mutex for the full duration of every exported method,
// reads included. The embedded drivers run on a single connection, so the
// identity read after an insert always observes that insert.
//
// # Change Tracking
//
// Committed configuration writes bump ConfigChanges, notification writes
// bump NotificationChanges, and both raise the configured
// changes.Signaler. Temporary file bookkeeping does neither.
//
// # Usage Example
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	store := database.NewStore(db, database.StoreConfig{DataDir: cfg.Storage.DataDir})
//
//	b := &models.Backup{
//	    Name:      "Documents",
//	    TargetURL: "file:///mnt/backup",
//	    Sources:   []string{"/home/me/Documents"},
//	    Settings:  []models.Setting{{Name: "--passphrase", Value: "secret"}},
//	}
//	sched := &models.Schedule{Repeat: "1D"}
//	if err := store.AddOrUpdateBackup(ctx, b, sched); err != nil {
//	    return err
//	}
//
// # Error Handling
//
// Lookups return sentinel errors (ErrBackupNotFound, ErrScheduleNotFound)
// wrapped with context; test with errors.Is. Rejected input returns a
// *ValidationError before any statement runs. Integrity failures
// (ErrIntegrityViolation, ErrPlaceholderCredential, ErrReservedIdentity)
// abort the enclosing transaction.
package database
