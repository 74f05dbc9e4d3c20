// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package models

import (
	"strconv"
	"strings"
)

// Reserved backup identities used as scope keys in the settings and
// filters tables. Neither is ever a row in the backups table.
const (
	// AnyBackupID scopes global filters and settings.
	AnyBackupID int64 = -1

	// ApplicationSettingsID scopes application-wide settings.
	ApplicationSettingsID int64 = -2
)

// PlaceholderCredential is shown in place of a stored secret. It must never
// be written back as a live setting value or inside a target URL.
const PlaceholderCredential = "**********"

// Backup is a configured job: what to back up, where to, and how.
//
// ID is a decimal positive integer once persisted. Temporary backups held
// only in memory carry a generated UUID instead.
type Backup struct {
	ID          string            `json:"id"`
	Name        string            `json:"name" validate:"notblank"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty" validate:"dive,listelem"`
	TargetURL   string            `json:"targetUrl" label:"target URL" validate:"notblank"`
	DBPath      string            `json:"dbPath,omitempty"`
	Sources     []string          `json:"sources" validate:"min=1,dive,notblank"`
	Settings    []Setting         `json:"settings,omitempty"`
	Filters     []Filter          `json:"filters,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Setting is one backup option. Filter optionally restricts the option to
// a source filter expression; it is empty for ordinary options.
type Setting struct {
	Filter string `json:"filter,omitempty"`
	Name   string `json:"name"`
	Value  string `json:"value"`
}

// Filter is one ordered include/exclude rule.
type Filter struct {
	Order      int64  `json:"order"`
	Include    bool   `json:"include"`
	Expression string `json:"expression"`
}

// NumericID returns the persisted identity, or 0 when the backup is new or
// temporary. ok is false when ID is set but not an integer.
func (b *Backup) NumericID() (id int64, ok bool) {
	if b.ID == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(b.ID, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsTemporary reports whether the backup is keyed by a generated,
// non-numeric identity.
func (b *Backup) IsTemporary() bool {
	_, ok := b.NumericID()
	return !ok
}

// Setting returns the value of the named option. Names match with or
// without a leading "--".
func (b *Backup) Setting(name string) (string, bool) {
	want := NormalizeOptionName(name)
	for _, s := range b.Settings {
		if NormalizeOptionName(s.Name) == want {
			return s.Value, true
		}
	}
	return "", false
}

// Clone returns a deep copy.
func (b *Backup) Clone() *Backup {
	if b == nil {
		return nil
	}
	out := *b
	out.Tags = append([]string(nil), b.Tags...)
	out.Sources = append([]string(nil), b.Sources...)
	out.Settings = append([]Setting(nil), b.Settings...)
	out.Filters = append([]Filter(nil), b.Filters...)
	if b.Metadata != nil {
		out.Metadata = make(map[string]string, len(b.Metadata))
		for k, v := range b.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// NormalizeOptionName strips a leading "--" and lower-cases the name.
func NormalizeOptionName(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "--"))
}

// BackupTag is the tag linking a schedule to its backup.
func BackupTag(backupID int64) string {
	return "ID=" + strconv.FormatInt(backupID, 10)
}

// ParseBackupTag extracts n from an "ID=<n>" tag.
func ParseBackupTag(tag string) (int64, bool) {
	rest, ok := strings.CutPrefix(tag, "ID=")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
