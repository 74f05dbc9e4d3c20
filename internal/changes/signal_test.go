// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package changes

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/safehold/internal/metrics"
)

func TestCoalescer_CollapsesBursts(t *testing.T) {
	c := NewCoalescer()

	queued := testutil.ToFloat64(metrics.ChangeSignals.WithLabelValues("queued"))
	coalesced := testutil.ToFloat64(metrics.ChangeSignals.WithLabelValues("coalesced"))

	for i := 0; i < 5; i++ {
		c.Signal()
	}

	select {
	case <-c.C():
	default:
		t.Fatal("expected a pending signal")
	}

	select {
	case <-c.C():
		t.Fatal("burst should collapse into one pending signal")
	default:
	}

	if got := testutil.ToFloat64(metrics.ChangeSignals.WithLabelValues("queued")) - queued; got != 1 {
		t.Errorf("queued delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.ChangeSignals.WithLabelValues("coalesced")) - coalesced; got != 4 {
		t.Errorf("coalesced delta = %v, want 4", got)
	}
}

func TestCoalescer_SignalNeverBlocks(t *testing.T) {
	c := NewCoalescer()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Signal()
		}()
	}
	wg.Wait()

	if len(c.C()) != 1 {
		t.Errorf("pending = %d, want 1", len(c.C()))
	}
}

func TestSignalerFunc(t *testing.T) {
	calls := 0
	var s Signaler = SignalerFunc(func() { calls++ })
	s.Signal()
	s.Signal()
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}

	Discard.Signal()
}
