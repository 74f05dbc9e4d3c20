// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/tomtom215/safehold/internal/metrics"
	"github.com/tomtom215/safehold/internal/models"
)

// dependentTables hold rows keyed by backup_id and are cleared when the
// backup is deleted.
var dependentTables = []string{"sources", "settings", "filters", "metadata", "error_logs", "job_logs"}

// GetBackup returns the backup with the given identity. Positive integer
// identities are read from the database; anything else is looked up in
// the temporary registry.
func (s *Store) GetBackup(ctx context.Context, id string) (*models.Backup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getBackup(ctx, id)
}

func (s *Store) getBackup(ctx context.Context, id string) (*models.Backup, error) {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > 0 {
		var out *models.Backup
		err := s.db.WithTx(ctx, func(tx *Tx) error {
			b, err := loadBackup(ctx, tx, n)
			out = b
			return err
		})
		return out, err
	}

	if b, ok := s.temp.Get(id); ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, id)
}

// GetBackups returns every persisted backup with its children, ordered by ID.
func (s *Store) GetBackups(ctx context.Context) ([]*models.Backup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Backup
	err := s.db.WithTx(ctx, func(tx *Tx) error {
		rows, err := selectRows(ctx, tx, backupsTable, "ORDER BY id")
		if err != nil {
			return err
		}
		out, err = hydrateBackups(ctx, tx, rows)
		return err
	})
	return out, err
}

// LookupBackupsByTags returns backups carrying any of tags. A single
// "ID=<n>" tag resolves directly to backup n.
func (s *Store) LookupBackupsByTags(ctx context.Context, tags []string) ([]*models.Backup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags = cleanTags(tags)
	if len(tags) == 0 {
		return nil, nil
	}

	var out []*models.Backup
	err := s.db.WithTx(ctx, func(tx *Tx) error {
		if len(tags) == 1 {
			if id, ok := models.ParseBackupTag(tags[0]); ok {
				row, err := selectOne(ctx, tx, backupsTable, "WHERE id = ?", id)
				if err != nil || row == nil {
					return err
				}
				out, err = hydrateBackups(ctx, tx, []*backupRow{row})
				return err
			}
		}

		rows, err := lookupByTags(ctx, tx, backupsTable, tags)
		if err != nil {
			return err
		}
		out, err = hydrateBackups(ctx, tx, rows)
		return err
	})
	return out, err
}

// AddOrUpdateBackup validates b, then in one transaction writes the backup
// row, replaces all of its child collections and merges its schedule. A
// nil sched deletes any schedule linked to the backup.
//
// New backups receive their identity in b.ID and, when b.DBPath is empty, a
// freshly allocated storage path. On failure b and sched are left as they
// were passed in.
func (s *Store) AddOrUpdateBackup(ctx context.Context, b *models.Backup, sched *models.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := b.NumericID()
	if !ok {
		return fmt.Errorf("%w: %s", ErrTemporaryBackup, b.ID)
	}
	if id < 0 {
		return fmt.Errorf("%w: %d", ErrReservedIdentity, id)
	}

	if err := ValidateBackup(b, sched); err != nil {
		metrics.ValidationFailures.Inc()
		return err
	}

	prevID, prevPath := b.ID, b.DBPath
	var prevSched models.Schedule
	if sched != nil {
		prevSched = *sched
	}

	err := s.db.WithTx(ctx, func(tx *Tx) error {
		if id == 0 && b.DBPath == "" {
			path, err := s.allocateStoragePath(ctx, tx)
			if err != nil {
				return err
			}
			b.DBPath = path
		}

		row := toBackupRow(b, id)
		n, err := OverwriteAndUpdateTx(ctx, tx, backupsTable, Scope{}, row)
		if err != nil {
			return err
		}
		if id != 0 && n == 0 {
			return fmt.Errorf("%w: %d", ErrBackupNotFound, id)
		}
		b.ID = strconv.FormatInt(row.ID, 10)

		if err := replaceChildren(ctx, tx, row.ID, b); err != nil {
			return err
		}
		return mergeSchedule(ctx, tx, row.ID, sched)
	})
	if err != nil {
		b.ID, b.DBPath = prevID, prevPath
		if sched != nil {
			*sched = prevSched
		}
		return err
	}

	s.log.Info().Str("backup_id", b.ID).Str("name", b.Name).Bool("created", id == 0).Msg("Backup saved")
	s.configChanged()
	return nil
}

// DeleteBackup removes a persisted backup, its schedule and every row keyed
// by it, in one transaction.
func (s *Store) DeleteBackup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTemporaryBackup, id)
	}
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrReservedIdentity, n)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrBackupNotFound, n)
	}

	err = s.db.WithTx(ctx, func(tx *Tx) error {
		scheds, err := lookupByTags(ctx, tx, schedulesTable, []string{models.BackupTag(n)})
		if err != nil {
			return err
		}
		for _, sc := range scheds {
			if err := deleteByID(ctx, tx, "schedules", sc.ID, ErrScheduleNotFound); err != nil {
				return err
			}
		}

		for _, table := range dependentTables {
			if _, err := tx.exec(ctx, "delete", table, "DELETE FROM "+table+" WHERE backup_id = ?", n); err != nil {
				return fmt.Errorf("failed to delete %s of backup %d: %w", table, n, err)
			}
		}

		return deleteByID(ctx, tx, "backups", n, fmt.Errorf("%w: %d", ErrBackupNotFound, n))
	})
	if err != nil {
		return err
	}

	s.log.Info().Int64("backup_id", n).Msg("Backup deleted")
	s.configChanged()
	return nil
}

// RegisterTemporaryBackup keeps a copy of b in memory only and returns its
// generated identity, which is also written to b.ID.
func (s *Store) RegisterTemporaryBackup(b *models.Backup) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temp.Register(b)
}

// UnregisterTemporaryBackup drops a temporary backup.
func (s *Store) UnregisterTemporaryBackup(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temp.Unregister(id)
}

// GetTemporaryBackups lists the temporary backups.
func (s *Store) GetTemporaryBackups() []*models.Backup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temp.List()
}

func loadBackup(ctx context.Context, q queryRunner, id int64) (*models.Backup, error) {
	row, err := selectOne(ctx, q, backupsTable, "WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%w: %d", ErrBackupNotFound, id)
	}
	bs, err := hydrateBackups(ctx, q, []*backupRow{row})
	if err != nil {
		return nil, err
	}
	return bs[0], nil
}

func hydrateBackups(ctx context.Context, q queryRunner, rows []*backupRow) ([]*models.Backup, error) {
	out := make([]*models.Backup, 0, len(rows))
	for _, r := range rows {
		b := r.model()
		if err := loadChildren(ctx, q, r.ID, b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func loadChildren(ctx context.Context, q queryRunner, id int64, b *models.Backup) error {
	sources, err := selectRows(ctx, q, sourcesTable, "WHERE backup_id = ? ORDER BY path", id)
	if err != nil {
		return err
	}
	for _, r := range sources {
		b.Sources = append(b.Sources, r.Path)
	}

	settings, err := loadSettings(ctx, q, id)
	if err != nil {
		return err
	}
	b.Settings = settings

	filters, err := loadFilters(ctx, q, id)
	if err != nil {
		return err
	}
	b.Filters = filters

	meta, err := selectRows(ctx, q, metadataTable, "WHERE backup_id = ? ORDER BY name", id)
	if err != nil {
		return err
	}
	if len(meta) > 0 {
		b.Metadata = make(map[string]string, len(meta))
		for _, r := range meta {
			b.Metadata[r.Name] = r.Value
		}
	}
	return nil
}

func replaceChildren(ctx context.Context, tx *Tx, id int64, b *models.Backup) error {
	scope := ScopeByBackup(id)

	sources := make([]*sourceRow, len(b.Sources))
	for i, p := range b.Sources {
		sources[i] = &sourceRow{BackupID: id, Path: p}
	}
	if _, err := OverwriteAndUpdateTx(ctx, tx, sourcesTable, scope, sources...); err != nil {
		return err
	}

	if err := replaceSettings(ctx, tx, id, b.Settings); err != nil {
		return err
	}
	if err := replaceFilters(ctx, tx, id, b.Filters); err != nil {
		return err
	}

	names := make([]string, 0, len(b.Metadata))
	for k := range b.Metadata {
		names = append(names, k)
	}
	sort.Strings(names)
	meta := make([]*metadataRow, len(names))
	for i, k := range names {
		meta[i] = &metadataRow{BackupID: id, Name: k, Value: b.Metadata[k]}
	}
	_, err := OverwriteAndUpdateTx(ctx, tx, metadataTable, scope, meta...)
	return err
}

// mergeSchedule keeps at most one schedule per backup. An existing
// schedule keeps its identity and last run; the rest of it is overwritten.
func mergeSchedule(ctx context.Context, tx *Tx, backupID int64, sched *models.Schedule) error {
	existing, err := lookupByTags(ctx, tx, schedulesTable, []string{models.BackupTag(backupID)})
	if err != nil {
		return err
	}

	if sched == nil {
		for _, e := range existing {
			if err := deleteByID(ctx, tx, "schedules", e.ID, ErrScheduleNotFound); err != nil {
				return err
			}
		}
		return nil
	}

	merged := &models.Schedule{
		Tags:   withBackupTag(sched.Tags, backupID),
		Time:   sched.Time,
		Repeat: sched.Repeat,
		Rule:   sched.Rule,
	}
	if len(existing) > 0 {
		merged.ID = existing[0].ID
		merged.LastRun = existing[0].LastRun
		for _, extra := range existing[1:] {
			if err := deleteByID(ctx, tx, "schedules", extra.ID, ErrScheduleNotFound); err != nil {
				return err
			}
		}
	} else {
		merged.LastRun = sched.LastRun
	}

	if _, err := OverwriteAndUpdateTx(ctx, tx, schedulesTable, Scope{}, merged); err != nil {
		return err
	}
	*sched = *merged
	return nil
}

// withBackupTag returns tags with every "ID=" tag replaced by the one for
// backupID.
func withBackupTag(tags []string, backupID int64) []string {
	out := make([]string, 0, len(tags)+1)
	for _, t := range cleanTags(tags) {
		if _, ok := models.ParseBackupTag(t); !ok {
			out = append(out, t)
		}
	}
	return append(out, models.BackupTag(backupID))
}

// allocateStoragePath picks an unused random file name under the data
// directory, rejecting names that exist on disk or belong to another
// backup.
func (s *Store) allocateStoragePath(ctx context.Context, q queryRunner) (string, error) {
	for attempt := 1; attempt <= s.maxPathAttempts; attempt++ {
		candidate := filepath.Join(s.dataDir, s.randomName()+".sqlite")
		if s.pathExists(candidate) {
			continue
		}

		var n int64
		err := q.queryRow(ctx, "select", "backups", "SELECT COUNT(*) FROM backups WHERE db_path = ?", candidate).Scan(&n)
		if err != nil {
			return "", fmt.Errorf("failed to check storage path: %w", err)
		}
		if n > 0 {
			continue
		}

		metrics.StoragePathAttempts.Observe(float64(attempt))
		return candidate, nil
	}

	metrics.StoragePathAttempts.Observe(float64(s.maxPathAttempts))
	s.log.Warn().Str("data_dir", s.dataDir).Int("attempts", s.maxPathAttempts).Msg("Storage path allocation exhausted")
	return "", fmt.Errorf("%w: %d attempts in %s", ErrStoragePathExhausted, s.maxPathAttempts, s.dataDir)
}
