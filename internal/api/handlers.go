// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/safehold/internal/models"
)

// readinessTimeout bounds the store ping behind /readyz.
const readinessTimeout = 2 * time.Second

// Backend is the database surface the endpoint checks.
type Backend interface {
	Ping(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
}

// StatusSource is the store surface the endpoint reports.
type StatusSource interface {
	ConfigChanges() int64
	NotificationChanges() int64
	GetTemporaryBackups() []*models.Backup
}

// Handler serves the operational endpoints.
type Handler struct {
	backend   Backend
	driver    string
	store     StatusSource
	startTime time.Time
}

// NewHandler creates a Handler. driver is reported verbatim by /readyz.
func NewHandler(backend Backend, driver string, store StatusSource) *Handler {
	return &Handler{
		backend:   backend,
		driver:    driver,
		store:     store,
		startTime: time.Now(),
	}
}

// Live reports that the process is serving.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Ready pings the store backend and reports the schema version.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	health := models.HealthStatus{
		Status: "healthy",
		Driver: h.driver,
		Uptime: time.Since(h.startTime).Seconds(),
	}

	if err := h.backend.Ping(ctx); err != nil {
		health.Status = "degraded"
		respondError(w, r, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "store backend is not reachable", err)
		return
	}
	health.DatabaseConnected = true

	version, err := h.backend.SchemaVersion(ctx)
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, "SCHEMA_UNAVAILABLE", "schema version could not be read", err)
		return
	}
	health.SchemaVersion = version

	respondData(w, http.StatusOK, health)
}

// Status reports the store's change counters.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, models.StoreStatus{
		ConfigChanges:       h.store.ConfigChanges(),
		NotificationChanges: h.store.NotificationChanges(),
		TemporaryBackups:    len(h.store.GetTemporaryBackups()),
	})
}
