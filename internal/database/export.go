// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/safehold/internal/models"
)

// SourceNamer resolves a friendly name for a source path, such as a
// well-known folder. ok is false when the path has no special name.
type SourceNamer interface {
	DisplayName(source string) (name string, ok bool)
}

// SourceNamerFunc adapts a function to SourceNamer.
type SourceNamerFunc func(source string) (string, bool)

// DisplayName calls f.
func (f SourceNamerFunc) DisplayName(source string) (string, bool) {
	return f(source)
}

// ExportBundle is a backup packaged for transfer to another installation.
type ExportBundle struct {
	Backup       *models.Backup    `json:"backup"`
	Schedule     *models.Schedule  `json:"schedule,omitempty"`
	DisplayNames map[string]string `json:"displayNames,omitempty"`
}

// ExportBackup bundles a backup with its schedule and the display names of
// its sources. namer may be nil.
func (s *Store) ExportBackup(ctx context.Context, id string, namer SourceNamer) (*ExportBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.getBackup(ctx, id)
	if err != nil {
		return nil, err
	}

	bundle := &ExportBundle{Backup: b}

	if n, ok := b.NumericID(); ok && n > 0 {
		scheds, err := lookupByTags(ctx, s.db, schedulesTable, []string{models.BackupTag(n)})
		if err != nil {
			return nil, err
		}
		if len(scheds) > 0 {
			bundle.Schedule = scheds[0]
		}
	}

	if namer != nil {
		for _, src := range b.Sources {
			if name, ok := namer.DisplayName(src); ok {
				if bundle.DisplayNames == nil {
					bundle.DisplayNames = make(map[string]string)
				}
				bundle.DisplayNames[src] = name
			}
		}
	}
	return bundle, nil
}

// Encode renders the bundle as indented JSON.
func (e *ExportBundle) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export bundle: %w", err)
	}
	return data, nil
}

// DecodeExportBundle parses an encoded bundle. Identities and the storage
// path are cleared so the backup imports as new.
func DecodeExportBundle(data []byte) (*ExportBundle, error) {
	var e ExportBundle
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode export bundle: %w", err)
	}
	if e.Backup == nil {
		return nil, fmt.Errorf("export bundle has no backup")
	}
	e.Backup.ID = ""
	e.Backup.DBPath = ""
	if e.Schedule != nil {
		e.Schedule.ID = 0
	}
	return &e, nil
}
