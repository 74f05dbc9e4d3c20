// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

/*
Package middleware provides HTTP middleware for the operational endpoint.

  - RequestID: reuses or generates an X-Request-ID and carries it into the
    logging correlation ID.
  - PrometheusMetrics: counts requests and observes latency per route
    pattern, so path parameters never explode label cardinality.

Both use the http.HandlerFunc shape; the api package adapts them to chi.
*/
package middleware
