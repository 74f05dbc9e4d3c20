// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/tomtom215/safehold/internal/database"
	"github.com/tomtom215/safehold/internal/logging"
	"github.com/tomtom215/safehold/internal/metrics"
	"github.com/tomtom215/safehold/internal/models"
)

// TempFilePurger lists expired temporary files and forgets them one by one.
type TempFilePurger interface {
	GetExpiredTempFiles(ctx context.Context, now time.Time) ([]*models.TempFile, error)
	DeleteTempFile(ctx context.Context, id int64) error
}

// TempFilePurgeService periodically removes expired temporary files from
// disk and then from the registry. A file already gone from disk counts as
// removed. A file that cannot be removed keeps its row and is retried on
// the next pass.
type TempFilePurgeService struct {
	purger   TempFilePurger
	interval time.Duration
	now      func() time.Time
	remove   func(path string) error
	name     string
}

// NewTempFilePurgeService creates a purge service that runs once at start
// and then every interval.
func NewTempFilePurgeService(purger TempFilePurger, interval time.Duration) *TempFilePurgeService {
	return &TempFilePurgeService{
		purger:   purger,
		interval: interval,
		now:      time.Now,
		remove:   os.Remove,
		name:     "tempfile-purge",
	}
}

// Serve implements suture.Service. A store failure is returned so the
// supervisor restarts the service with backoff.
func (s *TempFilePurgeService) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("%s: interval must be positive, got %v", s.name, s.interval)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.purgeOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *TempFilePurgeService) purgeOnce(ctx context.Context) error {
	expired, err := s.purger.GetExpiredTempFiles(ctx, s.now())
	if err != nil {
		return fmt.Errorf("list expired temp files: %w", err)
	}

	for _, f := range expired {
		if err := s.remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logging.Warn().Err(err).Int64("temp_file_id", f.ID).Str("path", f.Path).
				Msg("Failed to remove expired temp file, will retry")
			continue
		}

		err := s.purger.DeleteTempFile(ctx, f.ID)
		if err != nil && !errors.Is(err, database.ErrTempFileNotFound) {
			return fmt.Errorf("forget temp file %d: %w", f.ID, err)
		}
		metrics.TempFilesPurged.Inc()
	}
	return nil
}

// String names the service in supervisor logs.
func (s *TempFilePurgeService) String() string {
	return s.name
}
