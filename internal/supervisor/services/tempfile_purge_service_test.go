// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/safehold/internal/config"
	"github.com/tomtom215/safehold/internal/database"
	"github.com/tomtom215/safehold/internal/metrics"
	"github.com/tomtom215/safehold/internal/models"
)

var _ suture.Service = (*TempFilePurgeService)(nil)

type fakePurger struct {
	calls   atomic.Int32
	files   []*models.TempFile
	err     error
	deleted []int64
}

func (f *fakePurger) GetExpiredTempFiles(context.Context, time.Time) ([]*models.TempFile, error) {
	if f.calls.Add(1) > 1 {
		return nil, f.err
	}
	return f.files, f.err
}

func (f *fakePurger) DeleteTempFile(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestTempFilePurgeService_RemovesExpiredFiles(t *testing.T) {
	db, err := database.New(&config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "purge.sqlite")})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store := database.NewStore(db, database.StoreConfig{DataDir: t.TempDir()})
	ctx := context.Background()

	dir := t.TempDir()
	now := time.Unix(2_000_000, 0).UTC()
	expiredPath := filepath.Join(dir, "expired.tmp")
	keptPath := filepath.Join(dir, "kept.tmp")
	for _, p := range []string{expiredPath, keptPath} {
		if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range []*models.TempFile{
		{Origin: "restore", Path: expiredPath, Expires: now.Add(-time.Minute)},
		{Origin: "restore", Path: keptPath, Expires: now.Add(time.Hour)},
		{Origin: "restore", Path: filepath.Join(dir, "already-gone.tmp"), Expires: now.Add(-time.Hour)},
	} {
		if err := store.RegisterTempFile(ctx, f); err != nil {
			t.Fatalf("RegisterTempFile: %v", err)
		}
	}

	before := testutil.ToFloat64(metrics.TempFilesPurged)

	svc := NewTempFilePurgeService(store, time.Hour)
	svc.now = func() time.Time { return now }
	if err := svc.purgeOnce(ctx); err != nil {
		t.Fatalf("purgeOnce: %v", err)
	}

	if _, err := os.Stat(expiredPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expired file still on disk: %v", err)
	}
	if _, err := os.Stat(keptPath); err != nil {
		t.Errorf("unexpired file removed: %v", err)
	}
	if got := testutil.ToFloat64(metrics.TempFilesPurged); got != before+2 {
		t.Errorf("purged counter = %v, want %v", got, before+2)
	}

	remaining, err := store.GetTempFiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].Path != keptPath {
		t.Errorf("remaining = %+v", remaining)
	}
}

func TestTempFilePurgeService_RemoveFailureKeepsRow(t *testing.T) {
	db, err := database.New(&config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "locked.sqlite")})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store := database.NewStore(db, database.StoreConfig{DataDir: t.TempDir()})
	ctx := context.Background()

	now := time.Unix(3_000_000, 0).UTC()
	locked := &models.TempFile{Origin: "restore", Path: "/locked/a.tmp", Expires: now.Add(-time.Minute)}
	free := &models.TempFile{Origin: "restore", Path: "/free/b.tmp", Expires: now.Add(-time.Minute)}
	for _, f := range []*models.TempFile{locked, free} {
		if err := store.RegisterTempFile(ctx, f); err != nil {
			t.Fatalf("RegisterTempFile: %v", err)
		}
	}

	svc := NewTempFilePurgeService(store, time.Hour)
	svc.now = func() time.Time { return now }
	svc.remove = func(path string) error {
		if path == locked.Path {
			return &os.PathError{Op: "remove", Path: path, Err: os.ErrPermission}
		}
		return nil
	}

	if err := svc.purgeOnce(ctx); err != nil {
		t.Fatalf("remove failure should not fail the pass: %v", err)
	}

	remaining, err := store.GetTempFiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].ID != locked.ID {
		t.Fatalf("remaining = %+v, want only the locked file", remaining)
	}

	// The next pass retries once the file can be removed.
	svc.remove = func(string) error { return nil }
	if err := svc.purgeOnce(ctx); err != nil {
		t.Fatalf("retry pass: %v", err)
	}
	remaining, err = store.GetTempFiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Errorf("remaining after retry = %+v", remaining)
	}
}

func TestTempFilePurgeService_DeletesOnlyRemoved(t *testing.T) {
	purger := &fakePurger{files: []*models.TempFile{{ID: 1, Path: "/locked"}, {ID: 2, Path: "/gone"}}}
	svc := NewTempFilePurgeService(purger, time.Hour)
	svc.remove = func(path string) error {
		if path == "/locked" {
			return os.ErrPermission
		}
		return os.ErrNotExist
	}

	if err := svc.purgeOnce(context.Background()); err != nil {
		t.Fatalf("purgeOnce: %v", err)
	}
	if len(purger.deleted) != 1 || purger.deleted[0] != 2 {
		t.Errorf("deleted = %v, want [2]", purger.deleted)
	}
}

func TestTempFilePurgeService_Serve(t *testing.T) {
	t.Run("store failure restarts", func(t *testing.T) {
		storeErr := errors.New("database is locked")
		svc := NewTempFilePurgeService(&fakePurger{err: storeErr}, time.Hour)
		if err := svc.Serve(context.Background()); !errors.Is(err, storeErr) {
			t.Errorf("Serve = %v, want store error", err)
		}
	})

	t.Run("invalid interval", func(t *testing.T) {
		svc := NewTempFilePurgeService(&fakePurger{}, 0)
		if err := svc.Serve(context.Background()); err == nil {
			t.Error("expected error for zero interval")
		}
	})

	t.Run("runs on each tick until canceled", func(t *testing.T) {
		purger := &fakePurger{}
		svc := NewTempFilePurgeService(purger, 20*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()
		if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Serve = %v, want deadline exceeded", err)
		}
		if purger.calls.Load() < 3 {
			t.Errorf("purge ran %d times, want at least 3", purger.calls.Load())
		}
	})
}
