// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/safehold/internal/changes"
)

var _ suture.Service = (*ChangeWatcherService)(nil)

type fakeCounters struct {
	config, notifications atomic.Int64
}

func (f *fakeCounters) ConfigChanges() int64       { return f.config.Load() }
func (f *fakeCounters) NotificationChanges() int64 { return f.notifications.Load() }

type recordedChanges struct {
	mu     sync.Mutex
	events []ChangeEvent
	prev   []ChangeEvent
	got    chan struct{}
}

func newRecorder() *recordedChanges {
	return &recordedChanges{got: make(chan struct{}, 16)}
}

func (r *recordedChanges) handle(_ context.Context, current, previous ChangeEvent) {
	r.mu.Lock()
	r.events = append(r.events, current)
	r.prev = append(r.prev, previous)
	r.mu.Unlock()
	r.got <- struct{}{}
}

func (r *recordedChanges) snapshot() ([]ChangeEvent, []ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ChangeEvent(nil), r.events...), append([]ChangeEvent(nil), r.prev...)
}

func (r *recordedChanges) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.got:
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
	}
}

func TestChangeWatcherService_DeliversSnapshots(t *testing.T) {
	counters := &fakeCounters{}
	signal := changes.NewCoalescer()
	rec := newRecorder()
	svc := NewChangeWatcherService(signal.C(), counters, 0, rec.handle)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	counters.config.Add(1)
	signal.Signal()
	rec.wait(t)

	counters.notifications.Add(1)
	signal.Signal()
	rec.wait(t)

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve returned %v, want context.Canceled", err)
	}

	events, prev := rec.snapshot()
	if len(events) != 2 {
		t.Fatalf("delivered %d events, want 2", len(events))
	}
	if !events[0].ConfigChanged(prev[0]) || events[0].NotificationsChanged(prev[0]) {
		t.Errorf("first event = %+v (prev %+v), want config change only", events[0], prev[0])
	}
	if events[1].ConfigChanged(prev[1]) || !events[1].NotificationsChanged(prev[1]) {
		t.Errorf("second event = %+v (prev %+v), want notification change only", events[1], prev[1])
	}
}

func TestChangeWatcherService_DropsUnchangedSnapshots(t *testing.T) {
	counters := &fakeCounters{}
	counters.config.Store(5)
	wake := make(chan struct{}, 1)
	rec := newRecorder()
	svc := NewChangeWatcherService(wake, counters, 0, rec.handle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Serve(ctx) //nolint:errcheck

	// Counters match the construction-time snapshot.
	wake <- struct{}{}
	select {
	case <-rec.got:
		t.Fatal("unchanged counters were delivered")
	case <-time.After(100 * time.Millisecond):
	}

	counters.config.Add(1)
	wake <- struct{}{}
	rec.wait(t)
}

func TestChangeWatcherService_PacesBursts(t *testing.T) {
	counters := &fakeCounters{}
	signal := changes.NewCoalescer()
	rec := newRecorder()
	interval := 150 * time.Millisecond
	svc := NewChangeWatcherService(signal.C(), counters, interval, rec.handle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Serve(ctx) //nolint:errcheck

	start := time.Now()
	counters.config.Add(1)
	signal.Signal()
	rec.wait(t)

	// A burst during the pacing window folds into one delivery.
	for range 10 {
		counters.config.Add(1)
		signal.Signal()
	}
	rec.wait(t)

	if elapsed := time.Since(start); elapsed < interval {
		t.Errorf("second delivery after %v, want at least %v", elapsed, interval)
	}

	select {
	case <-rec.got:
		events, _ := rec.snapshot()
		t.Errorf("burst produced extra deliveries: %+v", events)
	case <-time.After(2 * interval):
	}

	events, _ := rec.snapshot()
	if last := events[len(events)-1]; last.ConfigChanges != 11 {
		t.Errorf("last delivered config counter = %d, want 11", last.ConfigChanges)
	}
}

func TestChangeWatcherService_String(t *testing.T) {
	svc := NewChangeWatcherService(nil, &fakeCounters{}, 0, func(context.Context, ChangeEvent, ChangeEvent) {})
	if svc.String() != "change-watcher" {
		t.Errorf("String() = %q", svc.String())
	}
}
