// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/safehold/internal/metrics"
	"github.com/tomtom215/safehold/internal/models"
)

// Application setting names maintained by the store itself.
const (
	SettingUnackedError   = "unacked-error"
	SettingUnackedWarning = "unacked-warning"
)

// requireBackupTx fails with ErrBackupNotFound unless backup id is
// persisted.
func requireBackupTx(ctx context.Context, tx *Tx, id int64) error {
	var n int64
	if err := tx.queryRow(ctx, "select", "backups", "SELECT COUNT(*) FROM backups WHERE id = ?", id).Scan(&n); err != nil {
		return fmt.Errorf("failed to check backup %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrBackupNotFound, id)
	}
	return nil
}

// GetSettings returns the settings of a backup, or the global settings when
// backupID is models.AnyBackupID.
func (s *Store) GetSettings(ctx context.Context, backupID int64) ([]models.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadSettings(ctx, s.db, backupID)
}

// SetSettings replaces the settings of a backup, or the global settings
// when backupID is models.AnyBackupID.
func (s *Store) SetSettings(ctx context.Context, backupID int64, settings []models.Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if backupID == models.ApplicationSettingsID {
		return fmt.Errorf("%w: use SetApplicationSettings", ErrReservedIdentity)
	}
	if err := checkPlaceholder("", settings); err != nil {
		return err
	}

	err := s.db.WithTx(ctx, func(tx *Tx) error {
		if backupID != models.AnyBackupID {
			if err := requireBackupTx(ctx, tx, backupID); err != nil {
				return err
			}
		}
		return replaceSettings(ctx, tx, backupID, settings)
	})
	if err != nil {
		return err
	}
	s.configChanged()
	return nil
}

// GetFilters returns the filters of a backup, or the global filters when
// backupID is models.AnyBackupID.
func (s *Store) GetFilters(ctx context.Context, backupID int64) ([]models.Filter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadFilters(ctx, s.db, backupID)
}

// SetFilters replaces the filters of a backup, or the global filters.
func (s *Store) SetFilters(ctx context.Context, backupID int64, filters []models.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if backupID == models.ApplicationSettingsID {
		return fmt.Errorf("%w: application settings have no filters", ErrReservedIdentity)
	}
	if err := validateFilters(filters); err != nil {
		metrics.ValidationFailures.Inc()
		return err
	}

	err := s.db.WithTx(ctx, func(tx *Tx) error {
		if backupID != models.AnyBackupID {
			if err := requireBackupTx(ctx, tx, backupID); err != nil {
				return err
			}
		}
		return replaceFilters(ctx, tx, backupID, filters)
	})
	if err != nil {
		return err
	}
	s.configChanged()
	return nil
}

// GetApplicationSettings returns the application-wide settings by name.
func (s *Store) GetApplicationSettings(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadApplicationSettings(ctx, s.db)
}

// SetApplicationSettings writes values by name. Settings not named in
// values are kept.
func (s *Store) SetApplicationSettings(ctx context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, v := range values {
		if v == models.PlaceholderCredential {
			return &ValidationError{
				Field:  name,
				Reason: fmt.Sprintf("setting %s holds the credential placeholder", name),
				cause:  ErrPlaceholderCredential,
			}
		}
	}

	err := s.db.WithTx(ctx, func(tx *Tx) error {
		return setApplicationSettingsTx(ctx, tx, values)
	})
	if err != nil {
		return err
	}
	s.configChanged()
	return nil
}

func loadSettings(ctx context.Context, q queryRunner, backupID int64) ([]models.Setting, error) {
	rows, err := selectRows(ctx, q, settingsTable, "WHERE backup_id = ? ORDER BY name, filter_expr", backupID)
	if err != nil {
		return nil, err
	}
	var out []models.Setting
	for _, r := range rows {
		out = append(out, models.Setting{Filter: r.Filter, Name: r.Name, Value: r.Value})
	}
	return out, nil
}

func replaceSettings(ctx context.Context, tx *Tx, backupID int64, settings []models.Setting) error {
	rows := make([]*settingRow, len(settings))
	for i, st := range settings {
		rows[i] = &settingRow{BackupID: backupID, Filter: st.Filter, Name: st.Name, Value: st.Value}
	}
	_, err := OverwriteAndUpdateTx(ctx, tx, settingsTable, ScopeByBackup(backupID), rows...)
	return err
}

func loadFilters(ctx context.Context, q queryRunner, backupID int64) ([]models.Filter, error) {
	rows, err := selectRows(ctx, q, filtersTable, "WHERE backup_id = ? ORDER BY sort_order, expression", backupID)
	if err != nil {
		return nil, err
	}
	var out []models.Filter
	for _, r := range rows {
		out = append(out, models.Filter{Order: r.Order, Include: r.Include, Expression: r.Expression})
	}
	return out, nil
}

func replaceFilters(ctx context.Context, tx *Tx, backupID int64, filters []models.Filter) error {
	rows := make([]*filterRow, len(filters))
	for i, f := range filters {
		rows[i] = &filterRow{BackupID: backupID, Order: f.Order, Include: f.Include, Expression: f.Expression}
	}
	_, err := OverwriteAndUpdateTx(ctx, tx, filtersTable, ScopeByBackup(backupID), rows...)
	return err
}

func loadApplicationSettings(ctx context.Context, q queryRunner) (map[string]string, error) {
	rows, err := selectRows(ctx, q, settingsTable, "WHERE backup_id = ?", models.ApplicationSettingsID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Name] = r.Value
	}
	return out, nil
}

// setApplicationSettingsTx overwrites the named application settings and
// keeps the rest.
func setApplicationSettingsTx(ctx context.Context, tx *Tx, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		_, err := OverwriteAndUpdateTx(ctx, tx, settingsTable,
			Scope{Where: "backup_id = ? AND name = ?", Args: []any{models.ApplicationSettingsID, name}},
			&settingRow{BackupID: models.ApplicationSettingsID, Name: name, Value: values[name]})
		if err != nil {
			return err
		}
	}
	return nil
}
