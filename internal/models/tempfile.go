// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package models

import "time"

// TempFile is a registered scratch file with an expiry.
type TempFile struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Origin    string    `json:"origin"`
	Path      string    `json:"path"`
	Expires   time.Time `json:"expires"`
}

// Expired reports whether the file has passed its expiry at now.
func (f *TempFile) Expired(now time.Time) bool {
	return !f.Expires.IsZero() && !now.Before(f.Expires)
}
