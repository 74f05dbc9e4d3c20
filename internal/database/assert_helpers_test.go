// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tomtom215/safehold/internal/config"
	"github.com/tomtom215/safehold/internal/models"
)

// setupTestDB opens a fresh SQLite database under t.TempDir().
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "safehold.sqlite"),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return db
}

// setupTestStore returns a Store over a fresh database with its data
// directory in t.TempDir().
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(setupTestDB(t), StoreConfig{DataDir: t.TempDir()})
}

// validBackup returns a backup that passes validation.
func validBackup(name string) *models.Backup {
	return &models.Backup{
		Name:      name,
		TargetURL: "file:///mnt/target/" + name,
		Sources:   []string{"/data/a", "/data/b"},
		Settings: []models.Setting{
			{Name: "--passphrase", Value: "correct horse"},
		},
	}
}

// countRows returns the number of rows in table matching where.
func countRows(t *testing.T, db *DB, table, where string, args ...any) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	if err := db.queryRow(context.Background(), "select", table, query, args...).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// checkNoError fails the test if err is not nil
func checkNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// checkErrorIs fails the test unless err wraps target
func checkErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error %v, got %v", target, err)
	}
}

// checkStringEqual checks that got equals want
func checkStringEqual(t *testing.T, fieldName, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %q, got %q", fieldName, want, got)
	}
}

// checkIntEqual checks that got equals want
func checkIntEqual(t *testing.T, fieldName string, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %d, got %d", fieldName, want, got)
	}
}
