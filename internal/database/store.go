// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"errors"
	"io/fs"
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/tomtom215/safehold/internal/changes"
	"github.com/tomtom215/safehold/internal/logging"
	"github.com/tomtom215/safehold/internal/metrics"
)

// DefaultMaxPathAttempts bounds storage-path allocation when StoreConfig
// leaves it unset.
const DefaultMaxPathAttempts = 100

// storageNameLength is the number of random letters in an allocated
// storage file name.
const storageNameLength = 10

// StoreConfig configures a Store.
type StoreConfig struct {
	// DataDir is where per-backup local databases are allocated.
	DataDir string

	// MaxPathAttempts bounds random name generation.
	MaxPathAttempts int

	// LenientEnums maps unknown stored enumeration text to the first
	// declared value instead of failing.
	LenientEnums bool

	// Signal receives a change signal after each counted write. Nil discards.
	Signal changes.Signaler
}

// Store is the configuration store. Every exported method takes the same
// mutex for its full duration, reads included, so callers never interleave.
type Store struct {
	mu sync.Mutex

	db     *DB
	tables tables
	temp   *TemporaryRegistry

	dataDir         string
	maxPathAttempts int

	signal              changes.Signaler
	configChanges       atomic.Int64
	notificationChanges atomic.Int64

	// Overridable in tests.
	randomName func() string
	pathExists func(string) bool

	log zerolog.Logger
}

// NewStore wraps an opened database.
func NewStore(db *DB, cfg StoreConfig) *Store {
	if cfg.MaxPathAttempts <= 0 {
		cfg.MaxPathAttempts = DefaultMaxPathAttempts
	}
	if cfg.Signal == nil {
		cfg.Signal = changes.Discard
	}

	return &Store{
		db:              db,
		tables:          newTables(cfg.LenientEnums),
		temp:            NewTemporaryRegistry(),
		dataDir:         cfg.DataDir,
		maxPathAttempts: cfg.MaxPathAttempts,
		signal:          cfg.Signal,
		randomName:      randomStorageName,
		pathExists:      fileExists,
		log:             logging.WithComponent("store"),
	}
}

// DB returns the underlying database.
func (s *Store) DB() *DB {
	return s.db
}

// ConfigChanges returns the number of committed configuration writes.
func (s *Store) ConfigChanges() int64 {
	return s.configChanges.Load()
}

// NotificationChanges returns the number of committed notification writes.
func (s *Store) NotificationChanges() int64 {
	return s.notificationChanges.Load()
}

func (s *Store) configChanged() {
	n := s.configChanges.Add(1)
	metrics.ConfigChanges.Set(float64(n))
	s.signal.Signal()
}

func (s *Store) notificationChanged() {
	n := s.notificationChanges.Add(1)
	metrics.NotificationChanges.Set(float64(n))
	s.signal.Signal()
}

func randomStorageName() string {
	b := make([]byte, storageNameLength)
	for i := range b {
		b[i] = byte('A' + rand.IntN(26))
	}
	return string(b)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
