// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

/*
Package api serves Safehold's operational HTTP endpoint with the chi router.

The endpoint is for operators and scrapers, not for managing backups:

	GET /healthz         liveness, always 200 while the process serves
	GET /readyz          store readiness: ping and schema version, 503 when degraded
	GET /api/v1/status   change counters and temporary backup count
	GET /metrics         Prometheus exposition

Every route runs behind request ID, real IP and panic recovery middleware.
When RouterConfig names origins, go-chi/cors answers browser requests from
them. The first three routes are rate limited per client IP with
go-chi/httprate; /metrics is not.
Responses use the models.APIResponse envelope encoded with goccy/go-json.
*/
package api
