// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

/*
Package metrics exposes Safehold's Prometheus instrumentation.

All collectors are registered on the default registry through promauto and
served at /metrics by the operational HTTP service.

# Available Metrics

Store:
  - safehold_db_query_duration_seconds{operation,table} (histogram)
  - safehold_db_query_errors_total{operation,table,error_type} (counter)
  - safehold_db_transactions_total{outcome} (counter)

Change tracking:
  - safehold_config_changes (gauge, mirrors the store counter)
  - safehold_notification_changes (gauge, mirrors the store counter)
  - safehold_change_signals_total{result} (counter)

Domain:
  - safehold_backup_validation_failures_total (counter)
  - safehold_temporary_backups (gauge)
  - safehold_storage_path_attempts (histogram)
  - safehold_temp_files_purged_total (counter)

HTTP:
  - safehold_http_requests_total{method,route,status} (counter)
  - safehold_http_request_duration_seconds{method,route} (histogram)
*/
package metrics
