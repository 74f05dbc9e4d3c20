// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

//go:build integration

package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/safehold/internal/config"
	"github.com/tomtom215/safehold/internal/models"
	"github.com/tomtom215/safehold/internal/testinfra"
)

// exerciseStore runs the same workload against any backend.
func exerciseStore(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	store := NewStore(db, StoreConfig{DataDir: t.TempDir()})

	b := validBackup("integration")
	b.Tags = []string{"nightly"}
	sched := &models.Schedule{Repeat: "1D", Time: time.Unix(5000, 0).UTC()}
	checkNoError(t, store.AddOrUpdateBackup(ctx, b, sched))

	got, err := store.GetBackup(ctx, b.ID)
	checkNoError(t, err)
	checkStringEqual(t, "name", got.Name, "integration")

	tagged, err := store.LookupBackupsByTags(ctx, []string{"nightly"})
	checkNoError(t, err)
	checkIntEqual(t, "tagged", len(tagged), 1)

	linked, err := store.GetScheduleForBackup(ctx, mustNumeric(t, b))
	checkNoError(t, err)
	if linked == nil || linked.ID != sched.ID {
		t.Fatalf("linked schedule = %+v, want id %d", linked, sched.ID)
	}

	n := notification(models.NotificationError, "failed", 10)
	_, err = store.RegisterNotification(ctx, n, AlwaysKeepNew)
	checkNoError(t, err)
	_, err = store.RegisterNotification(ctx, notification(models.NotificationError, "failed again", 20), ReplaceSameType)
	checkNoError(t, err)
	all, err := store.GetNotifications(ctx)
	checkNoError(t, err)
	checkIntEqual(t, "notifications", len(all), 1)

	checkNoError(t, store.DeleteBackup(ctx, b.ID))
	checkIntEqual(t, "schedules", countRows(t, db, "schedules", ""), 0)
	checkIntEqual(t, "sources", countRows(t, db, "sources", ""), 0)
}

func mustNumeric(t *testing.T, b *models.Backup) int64 {
	t.Helper()
	n, ok := b.NumericID()
	if !ok {
		t.Fatalf("backup %q has no numeric id", b.ID)
	}
	return n
}

func TestIntegration_Postgres(t *testing.T) {
	testinfra.SkipIfNoDocker(t)
	ctx := context.Background()

	pg, err := testinfra.NewPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	testinfra.CleanupContainer(t, pg)

	db, err := New(&config.DatabaseConfig{Driver: "postgres", DSN: pg.DSN})
	if err != nil {
		logs, _ := testinfra.ContainerLogs(ctx, pg)
		t.Fatalf("open postgres: %v\n%s", err, logs)
	}
	defer db.Close()

	checkStringEqual(t, "dialect", db.Dialect().Name(), "postgres")
	exerciseStore(t, db)
}

func TestIntegration_DuckDB(t *testing.T) {
	db, err := New(&config.DatabaseConfig{
		Driver: "duckdb",
		Path:   filepath.Join(t.TempDir(), "safehold.duckdb"),
	})
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	defer db.Close()

	checkStringEqual(t, "dialect", db.Dialect().Name(), "duckdb")
	exerciseStore(t, db)
}
