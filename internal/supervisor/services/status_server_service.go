// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/safehold/internal/logging"
)

// Listener is the part of *http.Server the status server drives.
type Listener interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// StatusServerService serves the health, readiness, status and metrics
// routes built by api.NewRouter.
//
//	srv := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: router}
//	tree.AddAPIService(services.NewStatusServerService(srv, srv.Addr, cfg.Server.ShutdownTimeout))
type StatusServerService struct {
	listener        Listener
	addr            string
	shutdownTimeout time.Duration
	name            string
}

// NewStatusServerService wraps listener, which is expected to be bound to
// addr. A non-positive shutdownTimeout defaults to 10s.
func NewStatusServerService(listener Listener, addr string, shutdownTimeout time.Duration) *StatusServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &StatusServerService{
		listener:        listener,
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
		name:            "status-server",
	}
}

// Serve implements suture.Service. A listener failure is returned so the
// api-layer supervisor restarts it; cancellation drains open requests
// within shutdownTimeout and returns ctx.Err().
func (s *StatusServerService) Serve(ctx context.Context) error {
	log := s.logger(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := s.listener.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	log.Info().Msg("Status server listening")

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Status server stopped unexpectedly")
			return fmt.Errorf("status server on %s: %w", s.addr, err)
		}
		return nil

	case <-ctx.Done():
		// ctx is already canceled, so shutdown gets its own budget.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.listener.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Dur("shutdown_timeout", s.shutdownTimeout).Msg("Status server shutdown incomplete")
			return fmt.Errorf("status server on %s: shutdown: %w", s.addr, err)
		}

		<-errCh
		log.Info().Msg("Status server stopped")
		return ctx.Err()
	}
}

func (s *StatusServerService) logger(ctx context.Context) zerolog.Logger {
	return logging.Ctx(ctx).With().Str("service", s.name).Str("addr", s.addr).Logger()
}

func (s *StatusServerService) String() string {
	return s.name
}
