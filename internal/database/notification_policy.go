// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import "github.com/tomtom215/safehold/internal/models"

// DecisionKind is the outcome of a conflict policy.
type DecisionKind int

const (
	// KeepNew inserts the candidate.
	KeepNew DecisionKind = iota
	// KeepExisting drops the candidate and leaves ExistingID untouched.
	KeepExisting
	// ReplaceExisting deletes ExistingID, then inserts the candidate.
	ReplaceExisting
)

func (k DecisionKind) String() string {
	switch k {
	case KeepNew:
		return "keep_new"
	case KeepExisting:
		return "keep_existing"
	case ReplaceExisting:
		return "replace_existing"
	default:
		return "unknown"
	}
}

// Decision is returned by a ConflictPolicy.
type Decision struct {
	Kind       DecisionKind
	ExistingID int64
}

// ConflictPolicy decides what happens when a notification is registered.
// existing is the full current log ordered by timestamp, then ID.
type ConflictPolicy interface {
	Decide(candidate *models.Notification, existing []*models.Notification) Decision
}

// ConflictPolicyFunc adapts a function to ConflictPolicy.
type ConflictPolicyFunc func(candidate *models.Notification, existing []*models.Notification) Decision

// Decide calls f.
func (f ConflictPolicyFunc) Decide(candidate *models.Notification, existing []*models.Notification) Decision {
	return f(candidate, existing)
}

// AlwaysKeepNew appends every candidate.
var AlwaysKeepNew ConflictPolicy = ConflictPolicyFunc(func(*models.Notification, []*models.Notification) Decision {
	return Decision{Kind: KeepNew}
})

// ReplaceExistingWithNew replaces the most recent entry, if any, with the
// candidate.
var ReplaceExistingWithNew ConflictPolicy = ConflictPolicyFunc(func(_ *models.Notification, existing []*models.Notification) Decision {
	if len(existing) == 0 {
		return Decision{Kind: KeepNew}
	}
	return Decision{Kind: ReplaceExisting, ExistingID: existing[len(existing)-1].ID}
})

// ReplaceSameType replaces the most recent entry with the candidate's type
// and backup, keeping at most one active notification of each kind.
var ReplaceSameType ConflictPolicy = ConflictPolicyFunc(func(candidate *models.Notification, existing []*models.Notification) Decision {
	if m := lastOfKind(candidate, existing); m != nil {
		return Decision{Kind: ReplaceExisting, ExistingID: m.ID}
	}
	return Decision{Kind: KeepNew}
})

// KeepFirstOfType drops the candidate when an entry with the same type and
// backup already exists.
var KeepFirstOfType ConflictPolicy = ConflictPolicyFunc(func(candidate *models.Notification, existing []*models.Notification) Decision {
	for _, n := range existing {
		if sameKind(candidate, n) {
			return Decision{Kind: KeepExisting, ExistingID: n.ID}
		}
	}
	return Decision{Kind: KeepNew}
})

func lastOfKind(candidate *models.Notification, existing []*models.Notification) *models.Notification {
	for i := len(existing) - 1; i >= 0; i-- {
		if sameKind(candidate, existing[i]) {
			return existing[i]
		}
	}
	return nil
}

func sameKind(a, b *models.Notification) bool {
	if a.Type != b.Type {
		return false
	}
	if a.BackupID == nil || b.BackupID == nil {
		return a.BackupID == nil && b.BackupID == nil
	}
	return *a.BackupID == *b.BackupID
}
