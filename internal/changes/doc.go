// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

/*
Package changes carries the payload-free "something changed" signal raised by
the store after configuration or notification writes.

The store only knows the Signaler interface. Consumers that want to react to
changes wire a Coalescer and read from its channel; bursts of writes collapse
into a single pending signal, so a slow consumer never blocks the store.

Usage:

	c := changes.NewCoalescer()
	store := database.NewStore(db, database.StoreConfig{Signal: c})

	for range c.C() {
	    // re-read ConfigChanges()/NotificationChanges()
	}
*/
package changes
