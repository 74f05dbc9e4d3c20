// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package models

import "time"

// Schedule is a repetition rule. A schedule belongs to a backup when its
// tags contain BackupTag(backupID). Tags are stored verbatim and must not be
// empty or contain a comma.
type Schedule struct {
	ID      int64     `json:"id"`
	Tags    []string  `json:"tags" validate:"dive,listelem"`
	Time    time.Time `json:"time"`
	Repeat  string    `json:"repeat"`
	LastRun time.Time `json:"lastRun"`
	Rule    string    `json:"rule,omitempty"`
}

// Clone returns a deep copy.
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return nil
	}
	out := *s
	out.Tags = append([]string(nil), s.Tags...)
	return &out
}

// BackupID returns the backup this schedule is linked to, if any.
func (s *Schedule) BackupID() (int64, bool) {
	for _, t := range s.Tags {
		if id, ok := ParseBackupTag(t); ok {
			return id, true
		}
	}
	return 0, false
}

// BackupLinks counts the BackupTag entries in Tags.
func (s *Schedule) BackupLinks() int {
	n := 0
	for _, t := range s.Tags {
		if _, ok := ParseBackupTag(t); ok {
			n++
		}
	}
	return n
}
