// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/safehold/internal/api"
	"github.com/tomtom215/safehold/internal/changes"
	"github.com/tomtom215/safehold/internal/config"
	"github.com/tomtom215/safehold/internal/database"
	"github.com/tomtom215/safehold/internal/logging"
	"github.com/tomtom215/safehold/internal/supervisor"
	"github.com/tomtom215/safehold/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("driver", cfg.Database.Driver).
		Str("data_dir", cfg.Storage.DataDir).
		Str("metrics_addr", cfg.Server.MetricsAddr).
		Msg("Starting Safehold")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	changeSignal := changes.NewCoalescer()
	store := database.NewStore(db, database.StoreConfig{
		DataDir:         cfg.Storage.DataDir,
		MaxPathAttempts: cfg.Storage.MaxPathAttempts,
		LenientEnums:    cfg.Database.LenientEnums,
		Signal:          changeSignal,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if cfg.Storage.TempPurgeInterval > 0 {
		tree.AddStoreService(services.NewTempFilePurgeService(store, cfg.Storage.TempPurgeInterval))
	}

	tree.AddEventService(services.NewChangeWatcherService(changeSignal.C(), store, cfg.Server.SignalInterval, logChange))

	if cfg.Server.MetricsAddr != "" {
		server := &http.Server{
			Addr:              cfg.Server.MetricsAddr,
			Handler:           api.NewRouter(api.NewHandler(db, db.Dialect().Name(), store), api.RouterConfig{
				CORSOrigins:       cfg.Server.CORSOrigins,
				RateLimitRequests: cfg.Server.RateLimitRequests,
				RateLimitWindow:   cfg.Server.RateLimitWindow,
			}),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		tree.AddAPIService(services.NewStatusServerService(server, server.Addr, cfg.Server.ShutdownTimeout))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
		err = <-errCh
	case err = <-errCh:
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().
		Int64("config_changes", store.ConfigChanges()).
		Int64("notification_changes", store.NotificationChanges()).
		Msg("Safehold stopped")
}

// logChange records every delivered counter movement.
func logChange(ctx context.Context, current, previous services.ChangeEvent) {
	ev := logging.Ctx(ctx).Info().
		Int64("config_changes", current.ConfigChanges).
		Int64("notification_changes", current.NotificationChanges)
	switch {
	case current.ConfigChanged(previous) && current.NotificationsChanged(previous):
		ev.Msg("Configuration and notifications changed")
	case current.ConfigChanged(previous):
		ev.Msg("Configuration changed")
	default:
		ev.Msg("Notifications changed")
	}
}
