// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"context"
	"strings"
	"testing"

	"github.com/tomtom215/safehold/internal/models"
)

func TestStore_ExportBackup(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	b := validBackup("photos")
	sched := &models.Schedule{Repeat: "1D"}
	checkNoError(t, store.AddOrUpdateBackup(ctx, b, sched))

	namer := SourceNamerFunc(func(src string) (string, bool) {
		if src == "/data/a" {
			return "Documents", true
		}
		return "", false
	})

	bundle, err := store.ExportBackup(ctx, b.ID, namer)
	checkNoError(t, err)
	checkStringEqual(t, "name", bundle.Backup.Name, "photos")
	if bundle.Schedule == nil || bundle.Schedule.ID != sched.ID {
		t.Fatalf("Schedule = %+v, want id %d", bundle.Schedule, sched.ID)
	}
	if len(bundle.DisplayNames) != 1 || bundle.DisplayNames["/data/a"] != "Documents" {
		t.Errorf("DisplayNames = %v", bundle.DisplayNames)
	}

	data, err := bundle.Encode()
	checkNoError(t, err)
	if !strings.Contains(string(data), `"displayNames"`) {
		t.Errorf("encoded bundle lacks display names:\n%s", data)
	}

	decoded, err := DecodeExportBundle(data)
	checkNoError(t, err)
	if decoded.Backup.ID != "" || decoded.Backup.DBPath != "" || decoded.Schedule.ID != 0 {
		t.Errorf("decoded identities not cleared: %+v / %+v", decoded.Backup, decoded.Schedule)
	}
	checkStringEqual(t, "target", decoded.Backup.TargetURL, b.TargetURL)

	// An imported bundle is a new backup.
	checkNoError(t, store.AddOrUpdateBackup(ctx, decoded.Backup, decoded.Schedule))
	if decoded.Backup.ID == b.ID {
		t.Error("import reused the exported identity")
	}
}

func TestStore_ExportBackupWithoutSchedule(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	b := validBackup("plain")
	checkNoError(t, store.AddOrUpdateBackup(ctx, b, nil))

	bundle, err := store.ExportBackup(ctx, b.ID, nil)
	checkNoError(t, err)
	if bundle.Schedule != nil || bundle.DisplayNames != nil {
		t.Errorf("bundle = %+v, want no schedule or names", bundle)
	}

	data, err := bundle.Encode()
	checkNoError(t, err)
	if strings.Contains(string(data), `"schedule"`) {
		t.Errorf("empty schedule should be omitted:\n%s", data)
	}

	_, err = store.ExportBackup(ctx, "999", nil)
	checkErrorIs(t, err, ErrBackupNotFound)
}

func TestDecodeExportBundleErrors(t *testing.T) {
	if _, err := DecodeExportBundle([]byte("{")); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := DecodeExportBundle([]byte(`{"schedule":{"repeat":"1D"}}`)); err == nil {
		t.Error("expected error for bundle without backup")
	}
}
