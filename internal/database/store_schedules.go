// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/safehold/internal/metrics"
	"github.com/tomtom215/safehold/internal/models"
)

// GetSchedules returns every schedule ordered by ID.
func (s *Store) GetSchedules(ctx context.Context) ([]*models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return selectRows(ctx, s.db, schedulesTable, "ORDER BY id")
}

// GetSchedule returns one schedule.
func (s *Store) GetSchedule(ctx context.Context, id int64) (*models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, err := selectOne(ctx, s.db, schedulesTable, "WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, fmt.Errorf("%w: %d", ErrScheduleNotFound, id)
	}
	return sc, nil
}

// GetScheduleForBackup returns the schedule linked to a backup, or nil.
func (s *Store) GetScheduleForBackup(ctx context.Context, backupID int64) (*models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scheds, err := lookupByTags(ctx, s.db, schedulesTable, []string{models.BackupTag(backupID)})
	if err != nil || len(scheds) == 0 {
		return nil, err
	}
	return scheds[0], nil
}

// LookupSchedulesByTags returns schedules carrying any of tags.
func (s *Store) LookupSchedulesByTags(ctx context.Context, tags []string) ([]*models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lookupByTags(ctx, s.db, schedulesTable, tags)
}

// AddOrUpdateSchedule writes a schedule. A zero ID inserts and back-fills
// the new identity.
//
// A schedule tagged BackupTag(n) is linked to backup n, which must exist.
// Inserting a schedule for a backup that already has one merges into the
// existing schedule, keeping its ID and LastRun. Updating a schedule to
// take over another schedule's link fails with ErrIntegrityViolation.
func (s *Store) AddOrUpdateSchedule(ctx context.Context, sched *models.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateSchedule(sched); err != nil {
		metrics.ValidationFailures.Inc()
		return err
	}
	if sched.BackupLinks() > 1 {
		metrics.ValidationFailures.Inc()
		return invalid("tags", "a schedule may be linked to one backup only, got %d ID= tags", sched.BackupLinks())
	}

	prev := *sched
	err := s.db.WithTx(ctx, func(tx *Tx) error {
		if backupID, ok := sched.BackupID(); ok {
			if err := s.linkScheduleTx(ctx, tx, sched, backupID); err != nil {
				return err
			}
		}

		n, err := OverwriteAndUpdateTx(ctx, tx, schedulesTable, Scope{}, sched)
		if err != nil {
			return err
		}
		if prev.ID != 0 && n == 0 {
			return fmt.Errorf("%w: %d", ErrScheduleNotFound, prev.ID)
		}
		return nil
	})
	if err != nil {
		*sched = prev
		return err
	}

	s.configChanged()
	return nil
}

// linkScheduleTx enforces at most one schedule per backup before sched is
// written.
func (s *Store) linkScheduleTx(ctx context.Context, tx *Tx, sched *models.Schedule, backupID int64) error {
	if err := requireBackupTx(ctx, tx, backupID); err != nil {
		return err
	}

	existing, err := lookupByTags(ctx, tx, schedulesTable, []string{models.BackupTag(backupID)})
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.ID == sched.ID {
			continue
		}
		if sched.ID != 0 {
			return fmt.Errorf("%w: backup %d is already scheduled by schedule %d", ErrIntegrityViolation, backupID, e.ID)
		}
		sched.ID = e.ID
		sched.LastRun = e.LastRun
	}
	return nil
}

// DeleteSchedule removes one schedule.
func (s *Store) DeleteSchedule(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithTx(ctx, func(tx *Tx) error {
		return deleteByID(ctx, tx, "schedules", id, fmt.Errorf("%w: %d", ErrScheduleNotFound, id))
	})
	if err != nil {
		return err
	}
	s.configChanged()
	return nil
}

// SetScheduleLastRun records a completed run and the next run time.
func (s *Store) SetScheduleLastRun(ctx context.Context, id int64, lastRun, next time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.exec(ctx, "update", "schedules",
		"UPDATE schedules SET last_run = ?, next_time = ? WHERE id = ?",
		epochSeconds(lastRun), epochSeconds(next), id)
	if err != nil {
		return fmt.Errorf("failed to update schedule %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %d", ErrScheduleNotFound, id)
	}
	s.configChanged()
	return nil
}
