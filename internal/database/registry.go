// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"sort"

	"github.com/google/uuid"

	"github.com/tomtom215/safehold/internal/metrics"
	"github.com/tomtom215/safehold/internal/models"
)

// TemporaryRegistry holds backups that exist only in memory, such as a job
// being restored from a remote target without a local configuration. It is
// not synchronized; the owning Store serializes access.
type TemporaryRegistry struct {
	backups map[string]*models.Backup
}

// NewTemporaryRegistry returns an empty registry.
func NewTemporaryRegistry() *TemporaryRegistry {
	return &TemporaryRegistry{backups: make(map[string]*models.Backup)}
}

// Register stores a copy of b under a newly generated identity and returns
// that identity. b.ID is set to it.
func (r *TemporaryRegistry) Register(b *models.Backup) string {
	id := uuid.New().String()
	b.ID = id
	r.backups[id] = b.Clone()
	metrics.TemporaryBackups.Set(float64(len(r.backups)))
	return id
}

// Unregister removes id and reports whether it was present.
func (r *TemporaryRegistry) Unregister(id string) bool {
	if _, ok := r.backups[id]; !ok {
		return false
	}
	delete(r.backups, id)
	metrics.TemporaryBackups.Set(float64(len(r.backups)))
	return true
}

// Get returns a copy of the backup registered under id.
func (r *TemporaryRegistry) Get(id string) (*models.Backup, bool) {
	b, ok := r.backups[id]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// List returns copies of all registered backups ordered by name, then ID.
func (r *TemporaryRegistry) List() []*models.Backup {
	out := make([]*models.Backup, 0, len(r.backups))
	for _, b := range r.backups {
		out = append(out, b.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of registered backups.
func (r *TemporaryRegistry) Len() int {
	return len(r.backups)
}
