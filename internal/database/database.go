// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tomtom215/safehold/internal/config"
	"github.com/tomtom215/safehold/internal/logging"
	"github.com/tomtom215/safehold/internal/metrics"
)

// DB wraps the database/sql handle together with its dialect.
type DB struct {
	runner
	conn *sql.DB
	cfg  config.DatabaseConfig
}

// Tx is an open transaction. Whoever calls BeginTx owns it and is the only
// party allowed to Commit or Rollback.
type Tx struct {
	runner
	tx *sql.Tx
}

// queryRunner is implemented by *DB and *Tx.
type queryRunner interface {
	exec(ctx context.Context, op, table, query string, args ...any) (sql.Result, error)
	query(ctx context.Context, op, table, query string, args ...any) (*sql.Rows, error)
	queryRow(ctx context.Context, op, table, query string, args ...any) *sql.Row
	dialect() Dialect
}

type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// runner rebinds placeholders and records statement metrics.
type runner struct {
	q sqlQuerier
	d Dialect
}

func (r runner) dialect() Dialect { return r.d }

func (r runner) exec(ctx context.Context, op, table, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := r.q.ExecContext(ctx, r.d.Rebind(query), args...)
	metrics.RecordDBQuery(op, table, time.Since(start), err)
	return res, err
}

func (r runner) query(ctx context.Context, op, table, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := r.q.QueryContext(ctx, r.d.Rebind(query), args...)
	metrics.RecordDBQuery(op, table, time.Since(start), err)
	return rows, err
}

func (r runner) queryRow(ctx context.Context, op, table, query string, args ...any) *sql.Row {
	start := time.Now()
	row := r.q.QueryRowContext(ctx, r.d.Rebind(query), args...)
	metrics.RecordDBQuery(op, table, time.Since(start), row.Err())
	return row
}

// New opens the configured backend and applies pending migrations.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	d, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := dataSourceName(d, cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	switch d.(type) {
	case postgresDialect:
		if cfg.MaxOpenConns > 0 {
			conn.SetMaxOpenConns(cfg.MaxOpenConns)
		}
	default:
		// Embedded engines: one connection keeps an in-memory database alive
		// and gives last-identity reads a single session to look at.
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
	}

	db := &DB{
		runner: runner{q: conn, d: d},
		conn:   conn,
		cfg:    *cfg,
	}

	ctx, cancel := schemaContext()
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to %s: %w", d.Name(), err)
	}

	if err := db.migrate(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().Str("driver", d.Name()).Str("path", cfg.Path).Msg("Database ready")
	return db, nil
}

func dataSourceName(d Dialect, cfg *config.DatabaseConfig) (string, error) {
	switch d.(type) {
	case postgresDialect:
		if cfg.DSN == "" {
			return "", fmt.Errorf("postgres requires a DSN")
		}
		return cfg.DSN, nil
	case duckdbDialect:
		if cfg.Path == "" || cfg.Path == ":memory:" {
			return "", nil
		}
		if err := ensureDir(cfg.Path); err != nil {
			return "", err
		}
		return cfg.Path + "?access_mode=read_write", nil
	default:
		if cfg.Path == "" || cfg.Path == ":memory:" {
			return ":memory:", nil
		}
		if err := ensureDir(cfg.Path); err != nil {
			return "", err
		}
		return cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
	}
}

// ensureDir creates the parent directory of a database file (0750 per gosec G301).
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}

// schemaContext bounds schema work during startup.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// Close closes the underlying pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Dialect returns the active dialect.
func (db *DB) Dialect() Dialect {
	return db.d
}

// BeginTx opens a transaction owned by the caller.
func (db *DB) BeginTx(ctx context.Context) (*Tx, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{runner: runner{q: tx, d: db.d}, tx: tx}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	err := t.tx.Commit()
	metrics.RecordTransaction(err)
	return err
}

// Rollback aborts the transaction.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	metrics.RecordTransaction(errRolledBack)
	return err
}

var errRolledBack = fmt.Errorf("rolled back")

// WithTx runs fn inside a transaction it owns: committed when fn returns nil,
// rolled back on error or panic.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logging.Warn().Err(rbErr).Msg("Transaction rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
