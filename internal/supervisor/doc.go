// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

/*
Package supervisor provides process supervision for Safehold using suture v4.

# Overview

Services are organized into three layers that fail and restart
independently:

	RootSupervisor ("safehold")
	├── StoreSupervisor ("store-layer")
	│   └── TempFilePurgeService
	├── EventsSupervisor ("events-layer")
	│   └── ChangeWatcherService
	└── APISupervisor ("api-layer")
	    └── StatusServerService

A failing purge pass never interrupts metrics scraping, and a crashing
HTTP listener never stops change delivery.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
	    return err
	}

	tree.AddStoreService(services.NewTempFilePurgeService(store, time.Hour))
	tree.AddEventService(services.NewChangeWatcherService(signal.C(), store, interval, onChange))
	tree.AddAPIService(services.NewStatusServerService(server, server.Addr, 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Structured Logging

Supervisor events (start, failure, backoff, restart) are logged through
sutureslog. NewSlogLogger in the logging package routes them into the
process-wide zerolog logger.

# Configuration

TreeConfig fields left at zero take DefaultTreeConfig values, which match
suture's own defaults.
*/
package supervisor
