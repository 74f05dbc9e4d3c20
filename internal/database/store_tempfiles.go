// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/safehold/internal/models"
)

// Temporary file bookkeeping is housekeeping, not configuration, so none of
// these operations move the change counters.

// RegisterTempFile records f and sets f.ID. A zero timestamp is set to now.
func (s *Store) RegisterTempFile(ctx context.Context, f *models.TempFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now().UTC().Truncate(time.Second)
	}
	f.ID = 0
	_, err := OverwriteAndUpdate(ctx, s.db, tempFilesTable, Scope{}, f)
	return err
}

// GetTempFiles returns all registered temporary files ordered by ID.
func (s *Store) GetTempFiles(ctx context.Context) ([]*models.TempFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return selectRows(ctx, s.db, tempFilesTable, "ORDER BY id")
}

// DeleteTempFile forgets one temporary file.
func (s *Store) DeleteTempFile(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithTx(ctx, func(tx *Tx) error {
		return deleteByID(ctx, tx, "temp_files", id, fmt.Errorf("%w: %d", ErrTempFileNotFound, id))
	})
}

// GetExpiredTempFiles returns the files whose expiry is at or before now,
// ordered by ID. Files without an expiry never appear. Rows stay registered
// until the caller has removed the file and calls DeleteTempFile.
func (s *Store) GetExpiredTempFiles(ctx context.Context, now time.Time) ([]*models.TempFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return selectRows(ctx, s.db, tempFilesTable,
		"WHERE expires_at > 0 AND expires_at <= ? ORDER BY id", epochSeconds(now))
}
