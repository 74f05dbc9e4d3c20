// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package changes

import "github.com/tomtom215/safehold/internal/metrics"

// Signaler receives change notifications. Signal must not block.
type Signaler interface {
	Signal()
}

// SignalerFunc adapts a function to Signaler.
type SignalerFunc func()

// Signal calls f.
func (f SignalerFunc) Signal() { f() }

// Discard drops every signal.
var Discard Signaler = SignalerFunc(func() {})

// Coalescer turns signals into at most one pending wake-up.
type Coalescer struct {
	ch chan struct{}
}

// NewCoalescer creates a Coalescer with an empty pending slot.
func NewCoalescer() *Coalescer {
	return &Coalescer{ch: make(chan struct{}, 1)}
}

// Signal marks a change as pending. If one is already pending the call is
// absorbed.
func (c *Coalescer) Signal() {
	select {
	case c.ch <- struct{}{}:
		metrics.RecordSignal("queued")
	default:
		metrics.RecordSignal("coalesced")
	}
}

// C returns the channel that yields one value per pending change.
func (c *Coalescer) C() <-chan struct{} {
	return c.ch
}
