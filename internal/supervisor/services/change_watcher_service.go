// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package services

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/safehold/internal/logging"
	"github.com/tomtom215/safehold/internal/metrics"
)

// CounterSource exposes the store's monotonic change counters.
type CounterSource interface {
	ConfigChanges() int64
	NotificationChanges() int64
}

// ChangeEvent is a counter snapshot taken after a change signal.
type ChangeEvent struct {
	ConfigChanges       int64
	NotificationChanges int64
}

// ConfigChanged reports whether the configuration counter moved since prev.
func (e ChangeEvent) ConfigChanged(prev ChangeEvent) bool {
	return e.ConfigChanges != prev.ConfigChanges
}

// NotificationsChanged reports whether the notification counter moved
// since prev.
func (e ChangeEvent) NotificationsChanged(prev ChangeEvent) bool {
	return e.NotificationChanges != prev.NotificationChanges
}

// ChangeHandler receives a snapshot and the previous one delivered.
type ChangeHandler func(ctx context.Context, current, previous ChangeEvent)

// ChangeWatcherService drains the store's change signal and hands counter
// snapshots to a handler. Deliveries are spaced by at least interval;
// signals that arrive in between fold into the next snapshot. A signal
// whose counters did not move since the last delivery is dropped.
type ChangeWatcherService struct {
	wake     <-chan struct{}
	source   CounterSource
	handler  ChangeHandler
	interval time.Duration
	last     ChangeEvent
	name     string
}

// NewChangeWatcherService creates a watcher. wake is typically
// changes.Coalescer.C(). A non-positive interval delivers every wake-up
// without pacing.
func NewChangeWatcherService(wake <-chan struct{}, source CounterSource, interval time.Duration, handler ChangeHandler) *ChangeWatcherService {
	return &ChangeWatcherService{
		wake:     wake,
		source:   source,
		handler:  handler,
		interval: interval,
		last:     snapshot(source),
		name:     "change-watcher",
	}
}

func snapshot(source CounterSource) ChangeEvent {
	return ChangeEvent{
		ConfigChanges:       source.ConfigChanges(),
		NotificationChanges: source.NotificationChanges(),
	}
}

// Serve implements suture.Service.
func (s *ChangeWatcherService) Serve(ctx context.Context) error {
	limit := rate.Inf
	if s.interval > 0 {
		limit = rate.Every(s.interval)
	}
	limiter := rate.NewLimiter(limit, 1)
	log := logging.Ctx(ctx).With().Str("service", s.name).Logger()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		}

		if err := limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}

		current := snapshot(s.source)
		if current == s.last {
			continue
		}

		log.Debug().
			Int64("config_changes", current.ConfigChanges).
			Int64("notification_changes", current.NotificationChanges).
			Msg("Delivering change")
		s.handler(ctx, current, s.last)
		s.last = current
		metrics.RecordSignal("delivered")
	}
}

// String names the service in supervisor logs.
func (s *ChangeWatcherService) String() string {
	return s.name
}
