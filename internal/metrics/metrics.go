// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Store statement metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "safehold_db_query_duration_seconds",
			Help:    "Duration of store statements in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safehold_db_query_errors_total",
			Help: "Total number of failed store statements",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBTransactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safehold_db_transactions_total",
			Help: "Store transactions by outcome",
		},
		[]string{"outcome"}, // "commit", "rollback"
	)

	// Change tracking
	ConfigChanges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "safehold_config_changes",
			Help: "Current value of the configuration change counter",
		},
	)

	NotificationChanges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "safehold_notification_changes",
			Help: "Current value of the notification change counter",
		},
	)

	ChangeSignals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safehold_change_signals_total",
			Help: "Change signals raised by the store",
		},
		[]string{"result"}, // "queued", "coalesced", "delivered"
	)

	// Domain state
	ValidationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "safehold_backup_validation_failures_total",
			Help: "Backups rejected by validation before any write",
		},
	)

	TemporaryBackups = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "safehold_temporary_backups",
			Help: "Backups currently held only in memory",
		},
	)

	StoragePathAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "safehold_storage_path_attempts",
			Help:    "Candidate names tried before a free storage path was found",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)

	TempFilesPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "safehold_temp_files_purged_total",
			Help: "Expired temporary files removed by the purge service",
		},
	)

	// Operational HTTP endpoint
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safehold_http_requests_total",
			Help: "Requests served by the operational HTTP endpoint",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "safehold_http_request_duration_seconds",
			Help:    "Duration of operational HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordDBQuery records one statement's duration and, on failure, its error class.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, errorType(err)).Inc()
	}
}

// RecordTransaction counts a commit (err == nil) or a rollback.
func RecordTransaction(err error) {
	if err != nil {
		DBTransactions.WithLabelValues("rollback").Inc()
		return
	}
	DBTransactions.WithLabelValues("commit").Inc()
}

// RecordSignal counts a change signal by outcome.
func RecordSignal(result string) {
	ChangeSignals.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "driver"
	}
}
