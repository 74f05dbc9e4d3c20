// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tomtom215/safehold/internal/models"
)

func TestStore_GlobalSettingsAndFilters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	b := validBackup("docs")
	checkNoError(t, store.AddOrUpdateBackup(ctx, b, nil))

	global := []models.Setting{
		{Name: "--thread-priority", Value: "low"},
		{Name: "--dblock-size", Value: "100mb"},
	}
	checkNoError(t, store.SetSettings(ctx, models.AnyBackupID, global))

	got, err := store.GetSettings(ctx, models.AnyBackupID)
	checkNoError(t, err)
	want := []models.Setting{global[1], global[0]}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("global settings = %+v, want %+v", got, want)
	}

	filters := []models.Filter{
		{Order: 1, Include: true, Expression: "*.doc"},
		{Order: 0, Include: false, Expression: "*.tmp"},
	}
	checkNoError(t, store.SetFilters(ctx, models.AnyBackupID, filters))
	gotFilters, err := store.GetFilters(ctx, models.AnyBackupID)
	checkNoError(t, err)
	if len(gotFilters) != 2 || gotFilters[0].Expression != "*.tmp" || !gotFilters[1].Include {
		t.Errorf("global filters = %+v", gotFilters)
	}

	// Global rows never leak into a backup.
	own, err := store.GetBackup(ctx, b.ID)
	checkNoError(t, err)
	if len(own.Settings) != 1 || len(own.Filters) != 0 {
		t.Errorf("backup picked up global rows: %+v / %+v", own.Settings, own.Filters)
	}

	// Replacing the set is total.
	checkNoError(t, store.SetSettings(ctx, models.AnyBackupID, nil))
	got, err = store.GetSettings(ctx, models.AnyBackupID)
	checkNoError(t, err)
	if len(got) != 0 {
		t.Errorf("settings after clear = %+v", got)
	}
}

func TestStore_SetSettingsGuards(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.SetSettings(ctx, models.ApplicationSettingsID, []models.Setting{{Name: "x", Value: "y"}})
	checkErrorIs(t, err, ErrReservedIdentity)

	err = store.SetFilters(ctx, models.ApplicationSettingsID, nil)
	checkErrorIs(t, err, ErrReservedIdentity)

	err = store.SetSettings(ctx, models.AnyBackupID, []models.Setting{{Name: "--passphrase", Value: models.PlaceholderCredential}})
	if !errors.Is(err, ErrPlaceholderCredential) {
		t.Errorf("expected ErrPlaceholderCredential, got %v", err)
	}
	checkIntEqual(t, "settings", countRows(t, store.DB(), "settings", ""), 0)
}

func TestStore_SetChildRowsRequireBackup(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.SetSettings(ctx, 42, []models.Setting{{Name: "--thread-priority", Value: "low"}})
	checkErrorIs(t, err, ErrBackupNotFound)
	err = store.SetFilters(ctx, 42, []models.Filter{{Order: 0, Expression: "*.tmp"}})
	checkErrorIs(t, err, ErrBackupNotFound)

	checkIntEqual(t, "settings", countRows(t, store.DB(), "settings", ""), 0)
	checkIntEqual(t, "filters", countRows(t, store.DB(), "filters", ""), 0)
	if store.ConfigChanges() != 0 {
		t.Errorf("ConfigChanges = %d, want 0", store.ConfigChanges())
	}

	b := validBackup("owner")
	checkNoError(t, store.AddOrUpdateBackup(ctx, b, nil))
	id, _ := b.NumericID()
	checkNoError(t, store.SetFilters(ctx, id, []models.Filter{{Order: 0, Expression: "*.tmp"}}))
}

func TestStore_FiltersRejectDuplicateOrder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	dup := []models.Filter{
		{Order: 3, Include: true, Expression: "*.doc"},
		{Order: 3, Include: false, Expression: "*.tmp"},
	}

	var ve *ValidationError
	if err := store.SetFilters(ctx, models.AnyBackupID, dup); !errors.As(err, &ve) {
		t.Fatalf("SetFilters: expected *ValidationError, got %v", err)
	}

	b := validBackup("dup")
	b.Filters = dup
	if err := store.AddOrUpdateBackup(ctx, b, nil); !errors.As(err, &ve) {
		t.Fatalf("AddOrUpdateBackup: expected *ValidationError, got %v", err)
	}
	checkIntEqual(t, "filters", countRows(t, store.DB(), "filters", ""), 0)
}

func TestStore_ApplicationSettings(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	checkNoError(t, store.SetApplicationSettings(ctx, map[string]string{
		"server-port-changed": "true",
		"theme":               "dark",
	}))
	checkNoError(t, store.SetApplicationSettings(ctx, map[string]string{"theme": "light"}))

	got, err := store.GetApplicationSettings(ctx)
	checkNoError(t, err)
	want := map[string]string{"server-port-changed": "true", "theme": "light"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("application settings = %v, want %v", got, want)
	}
	checkIntEqual(t, "rows", countRows(t, store.DB(), "settings", "backup_id = ?", models.ApplicationSettingsID), 2)

	err = store.SetApplicationSettings(ctx, map[string]string{"smtp-password": models.PlaceholderCredential})
	checkErrorIs(t, err, ErrPlaceholderCredential)

	if store.ConfigChanges() != 2 {
		t.Errorf("ConfigChanges = %d, want 2", store.ConfigChanges())
	}
}
