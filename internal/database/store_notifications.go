// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tomtom215/safehold/internal/models"
)

// GetNotifications returns the log ordered by timestamp, then ID.
func (s *Store) GetNotifications(ctx context.Context) ([]*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadNotifications(ctx, s.db)
}

// RegisterNotification offers n to the log. policy sees the candidate and
// the current log and decides whether n is inserted, dropped, or replaces
// an existing entry. A nil policy appends. On insert n.ID is set.
func (s *Store) RegisterNotification(ctx context.Context, n *models.Notification, policy ConflictPolicy) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if policy == nil {
		policy = AlwaysKeepNew
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC().Truncate(time.Second)
	}

	prevID := n.ID
	var decision Decision
	err := s.db.WithTx(ctx, func(tx *Tx) error {
		existing, err := s.loadNotifications(ctx, tx)
		if err != nil {
			return err
		}

		decision = policy.Decide(n, existing)
		switch decision.Kind {
		case KeepExisting:
			return nil
		case ReplaceExisting:
			if err := deleteByID(ctx, tx, "notifications", decision.ExistingID,
				fmt.Errorf("%w: %d", ErrNotificationNotFound, decision.ExistingID)); err != nil {
				return err
			}
		case KeepNew:
		default:
			return fmt.Errorf("unknown conflict decision %d", decision.Kind)
		}

		n.ID = 0
		if _, err := OverwriteAndUpdateTx(ctx, tx, s.tables.notifications, Scope{}, n); err != nil {
			return err
		}
		return refreshNotificationFlags(ctx, tx, s.tables.notifications)
	})
	if err != nil {
		n.ID = prevID
		return Decision{}, err
	}

	if decision.Kind != KeepExisting {
		s.log.Debug().Int64("notification_id", n.ID).Str("decision", decision.Kind.String()).Msg("Notification registered")
		s.notificationChanged()
	}
	return decision, nil
}

// DismissNotification deletes one entry and recomputes the unacknowledged
// error and warning flags. It reports false when id does not exist.
func (s *Store) DismissNotification(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.WithTx(ctx, func(tx *Tx) error {
		if err := deleteByID(ctx, tx, "notifications", id, ErrNotificationNotFound); err != nil {
			return err
		}
		return refreshNotificationFlags(ctx, tx, s.tables.notifications)
	})
	if errors.Is(err, ErrNotificationNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.notificationChanged()
	return true, nil
}

func (s *Store) loadNotifications(ctx context.Context, q queryRunner) ([]*models.Notification, error) {
	return selectRows(ctx, q, s.tables.notifications, "ORDER BY occurred_at, id")
}

// refreshNotificationFlags stores whether any error or warning remains in
// the log as application settings.
func refreshNotificationFlags(ctx context.Context, tx *Tx, t *Table[models.Notification]) error {
	remaining, err := selectRows(ctx, tx, t, "")
	if err != nil {
		return err
	}

	var hasError, hasWarning bool
	for _, n := range remaining {
		switch n.Type {
		case models.NotificationError:
			hasError = true
		case models.NotificationWarning:
			hasWarning = true
		}
	}

	return setApplicationSettingsTx(ctx, tx, map[string]string{
		SettingUnackedError:   strconv.FormatBool(hasError),
		SettingUnackedWarning: strconv.FormatBool(hasWarning),
	})
}
