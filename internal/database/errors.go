// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/safehold/internal/logging"
)

// Lookup errors
var (
	ErrBackupNotFound       = errors.New("backup not found")
	ErrScheduleNotFound     = errors.New("schedule not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrTempFileNotFound     = errors.New("temp file not found")
)

// Integrity violations. These indicate a broken caller contract or a
// corrupted store and always abort the enclosing transaction.
var (
	ErrIntegrityViolation    = errors.New("integrity violation")
	ErrPlaceholderCredential = errors.New("placeholder credential must not be persisted")
	ErrReservedIdentity      = errors.New("reserved backup identity")
	ErrTemporaryBackup       = errors.New("temporary backups cannot be persisted")
)

// Resource and mapping errors
var (
	ErrStoragePathExhausted = errors.New("unable to allocate a unique storage path")
	ErrUnknownEnumValue     = errors.New("unknown enumeration value")
	ErrUnsupportedDriver    = errors.New("unsupported database driver")
)

// ValidationError is returned by AddOrUpdateBackup and friends when input is
// rejected before any statement runs.
type ValidationError struct {
	Field  string
	Reason string
	cause  error
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Unwrap exposes the underlying sentinel, e.g. ErrPlaceholderCredential.
func (e *ValidationError) Unwrap() error {
	return e.cause
}

// closeWithLog closes a resource and logs a failure.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource on an error path where the Close error is
// not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
