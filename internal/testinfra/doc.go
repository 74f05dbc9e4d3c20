// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

// Package testinfra provides container-backed infrastructure for
// integration tests.
//
// It uses testcontainers-go to run a real PostgreSQL server so the
// server-grade dialect is exercised against the same engine used in
// production deployments. Every file is behind the integration build tag:
//
//	go test -tags integration ./internal/database/...
//
// # PostgreSQL Container
//
//	func TestPostgresStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    testinfra.CleanupContainer(t, pg)
//
//	    db, err := database.New(&config.DatabaseConfig{
//	        Driver: "postgres",
//	        DSN:    pg.DSN,
//	    })
//	    // ...
//	}
//
// # CI Considerations
//
// These tests require Docker and network access on first run to pull the
// image. Tests are skipped gracefully if Docker is unavailable.
package testinfra
