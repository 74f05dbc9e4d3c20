// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/safehold/internal/metrics"
)

func TestTemporaryRegistry(t *testing.T) {
	r := NewTemporaryRegistry()

	b := validBackup("restore")
	id := r.Register(b)

	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("identity %q is not a UUID: %v", id, err)
	}
	if b.ID != id {
		t.Errorf("b.ID = %q, want %q", b.ID, id)
	}
	if !b.IsTemporary() {
		t.Error("registered backup should report temporary")
	}
	if got := testutil.ToFloat64(metrics.TemporaryBackups); got != 1 {
		t.Errorf("temporary gauge = %v, want 1", got)
	}

	got, ok := r.Get(id)
	if !ok || got.Name != "restore" {
		t.Fatalf("Get = (%+v, %v)", got, ok)
	}
	got.Name = "mutated"
	again, _ := r.Get(id)
	if again.Name != "restore" {
		t.Error("Get must return a copy")
	}

	b.Name = "changed after register"
	if again, _ := r.Get(id); again.Name != "restore" {
		t.Error("Register must store a copy")
	}

	if !r.Unregister(id) {
		t.Error("Unregister should report true for a present id")
	}
	if r.Unregister(id) {
		t.Error("Unregister should report false the second time")
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestStore_TemporaryBackupsAreNotPersisted(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	b := validBackup("restore")
	id := store.RegisterTemporaryBackup(b)

	got, err := store.GetBackup(ctx, id)
	checkNoError(t, err)
	checkStringEqual(t, "name", got.Name, "restore")

	all, err := store.GetBackups(ctx)
	checkNoError(t, err)
	if len(all) != 0 {
		t.Errorf("temporary backup leaked into persisted list: %+v", all)
	}
	checkIntEqual(t, "backups rows", countRows(t, store.DB(), "backups", ""), 0)

	err = store.AddOrUpdateBackup(ctx, got, nil)
	checkErrorIs(t, err, ErrTemporaryBackup)

	if n := len(store.GetTemporaryBackups()); n != 1 {
		t.Errorf("GetTemporaryBackups = %d, want 1", n)
	}
	if !store.UnregisterTemporaryBackup(id) {
		t.Error("UnregisterTemporaryBackup should succeed")
	}

	_, err = store.GetBackup(ctx, id)
	checkErrorIs(t, err, ErrBackupNotFound)
}
