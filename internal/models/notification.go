// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package models

import (
	"fmt"
	"time"
)

// NotificationType is the severity of a notification.
type NotificationType int

// Declaration order is the storage contract: the first value is the
// fallback for lenient reads.
const (
	NotificationInformation NotificationType = iota
	NotificationWarning
	NotificationError
)

// NotificationTypeNames is indexed by NotificationType.
var NotificationTypeNames = []string{"Information", "Warning", "Error"}

func (t NotificationType) String() string {
	if t < 0 || int(t) >= len(NotificationTypeNames) {
		return fmt.Sprintf("NotificationType(%d)", int(t))
	}
	return NotificationTypeNames[t]
}

// MarshalText encodes the type by name.
func (t NotificationType) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(NotificationTypeNames) {
		return nil, fmt.Errorf("unknown notification type %d", int(t))
	}
	return []byte(NotificationTypeNames[t]), nil
}

// UnmarshalText decodes a type name.
func (t *NotificationType) UnmarshalText(b []byte) error {
	for i, n := range NotificationTypeNames {
		if n == string(b) {
			*t = NotificationType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown notification type %q", string(b))
}

// Notification is an operator-visible message.
type Notification struct {
	ID            int64            `json:"id"`
	Type          NotificationType `json:"type"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	Exception     *string          `json:"exception,omitempty"`
	BackupID      *string          `json:"backupId,omitempty"`
	Action        string           `json:"action,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
	LogEntryID    string           `json:"logEntryId,omitempty"`
	MessageID     string           `json:"messageId,omitempty"`
	MessageLogTag string           `json:"messageLogTag,omitempty"`
}
