// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/safehold/internal/logging"
)

// Migration is a versioned schema change. Statements are generated per
// dialect so one migration list serves every backend.
type Migration struct {
	Version     int       // Unique version number (monotonically increasing)
	Name        string    // Human-readable migration name
	Description string    // What this migration does
	AppliedAt   time.Time // Populated when read back from schema_migrations

	statements func(d Dialect) []string
}

// Migrations MUST be append-only once released.
var migrations = []Migration{
	{
		Version:     1,
		Name:        "initial_schema",
		Description: "Backups, children, schedules, logs, notifications and temporary files",
		statements:  initialSchema,
	},
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	applied_at BIGINT NOT NULL
)`

func initialSchema(d Dialect) []string {
	var stmts []string
	identity := func(table string) string {
		stmts = append(stmts, d.IdentityPrelude(table)...)
		return d.IdentityColumn(table)
	}

	stmts = append(stmts,
		`CREATE TABLE IF NOT EXISTS backups (
	`+identity("backups")+`,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '',
	target_url TEXT NOT NULL,
	db_path TEXT NOT NULL DEFAULT ''
)`)

	stmts = append(stmts,
		`CREATE TABLE IF NOT EXISTS schedules (
	`+identity("schedules")+`,
	tags TEXT NOT NULL DEFAULT '',
	next_time BIGINT NOT NULL DEFAULT 0,
	repeat_interval TEXT NOT NULL DEFAULT '',
	last_run BIGINT NOT NULL DEFAULT 0,
	rule TEXT NOT NULL DEFAULT ''
)`,
		`CREATE TABLE IF NOT EXISTS sources (
	backup_id BIGINT NOT NULL,
	path TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS settings (
	backup_id BIGINT NOT NULL,
	filter_expr TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL,
	value TEXT NOT NULL DEFAULT ''
)`,
		`CREATE TABLE IF NOT EXISTS filters (
	backup_id BIGINT NOT NULL,
	sort_order BIGINT NOT NULL,
	is_include INTEGER NOT NULL,
	expression TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS metadata (
	backup_id BIGINT NOT NULL,
	name TEXT NOT NULL,
	value TEXT NOT NULL DEFAULT ''
)`)

	stmts = append(stmts,
		`CREATE TABLE IF NOT EXISTS error_logs (
	`+identity("error_logs")+`,
	backup_id BIGINT NOT NULL,
	occurred_at BIGINT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	exception TEXT NOT NULL DEFAULT ''
)`)

	stmts = append(stmts,
		`CREATE TABLE IF NOT EXISTS job_logs (
	`+identity("job_logs")+`,
	backup_id BIGINT NOT NULL,
	occurred_at BIGINT NOT NULL,
	message TEXT NOT NULL DEFAULT ''
)`)

	stmts = append(stmts,
		`CREATE TABLE IF NOT EXISTS notifications (
	`+identity("notifications")+`,
	notification_type TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	message TEXT NOT NULL DEFAULT '',
	exception_text TEXT,
	backup_id TEXT,
	action TEXT NOT NULL DEFAULT '',
	occurred_at BIGINT NOT NULL,
	log_entry_id TEXT NOT NULL DEFAULT '',
	message_id TEXT NOT NULL DEFAULT '',
	log_tag TEXT NOT NULL DEFAULT ''
)`)

	stmts = append(stmts,
		`CREATE TABLE IF NOT EXISTS temp_files (
	`+identity("temp_files")+`,
	created_at BIGINT NOT NULL,
	origin TEXT NOT NULL DEFAULT '',
	path TEXT NOT NULL,
	expires_at BIGINT NOT NULL DEFAULT 0
)`)

	for _, t := range []string{"sources", "settings", "filters", "metadata", "error_logs", "job_logs"} {
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_backup_id ON %s (backup_id)", t, t))
	}
	return stmts
}

// migrate applies every migration not yet recorded, each in its own
// transaction.
func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.exec(ctx, "migrate", "schema_migrations", schemaMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}

	count := 0
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		err := db.WithTx(ctx, func(tx *Tx) error {
			for _, stmt := range m.statements(db.d) {
				if _, err := tx.exec(ctx, "migrate", m.Name, stmt); err != nil {
					return fmt.Errorf("failed to execute migration v%d (%s): %w", m.Version, m.Name, err)
				}
			}
			_, err := tx.exec(ctx, "insert", "schema_migrations",
				`INSERT INTO schema_migrations (version, name, description, applied_at) VALUES (?, ?, ?, ?)`,
				m.Version, m.Name, m.Description, time.Now().Unix())
			if err != nil {
				return fmt.Errorf("failed to record migration v%d: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		count++
	}

	if count > 0 {
		logging.Info().Int("count", count).Str("driver", db.d.Name()).Msg("Applied database migrations")
	}
	return nil
}

func (db *DB) appliedVersions(ctx context.Context) (map[int]bool, error) {
	history, err := db.MigrationHistory(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int]bool, len(history))
	for _, m := range history {
		out[m.Version] = true
	}
	return out, nil
}

// SchemaVersion returns the highest applied migration version.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.queryRow(ctx, "select", "schema_migrations",
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// MigrationHistory returns all applied migrations in order.
func (db *DB) MigrationHistory(ctx context.Context) ([]Migration, error) {
	rows, err := db.query(ctx, "select", "schema_migrations",
		`SELECT version, name, description, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query migration history: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var history []Migration
	for rows.Next() {
		var m Migration
		var appliedAt int64
		if err := rows.Scan(&m.Version, &m.Name, &m.Description, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		m.AppliedAt = time.Unix(appliedAt, 0).UTC()
		history = append(history, m)
	}
	return history, rows.Err()
}
