// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package models

import "time"

// APIResponse is the standard envelope for operational HTTP responses.
//
// Success:
//
//	{"status": "success", "data": {...}, "metadata": {"timestamp": "..."}}
//
// Error:
//
//	{"status": "error", "data": null, "metadata": {...}, "error": {"code": "...", "message": "..."}}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError is a machine-readable error code with a human message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthStatus reports readiness of the store backend.
type HealthStatus struct {
	Status            string  `json:"status"` // "healthy" or "degraded"
	Driver            string  `json:"driver"`
	DatabaseConnected bool    `json:"database_connected"`
	SchemaVersion     int     `json:"schema_version"`
	Uptime            float64 `json:"uptime_seconds"`
}

// StoreStatus reports the store's change counters.
type StoreStatus struct {
	ConfigChanges       int64 `json:"config_changes"`
	NotificationChanges int64 `json:"notification_changes"`
	TemporaryBackups    int   `json:"temporary_backups"`
}
