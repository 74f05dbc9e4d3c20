// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

// Package units parses the size and timespan notations used in backup
// options ("50mb", "1D12h") into int64 bytes and time.Duration.
package units
