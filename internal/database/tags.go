// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"context"
	"strings"
)

// joinTags stores tags as one comma-separated string. Tag text is kept
// byte for byte; validation rejects tags that are empty or contain a comma,
// so the join is reversible.
func joinTags(tags []string) string {
	return strings.Join(cleanTags(tags), ",")
}

// splitTags is the inverse of joinTags.
func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return cleanTags(strings.Split(s, ","))
}

// cleanTags drops entries that cannot be stored as a list element.
func cleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if validTag(t) {
			out = append(out, t)
		}
	}
	return out
}

// validTag reports whether t survives a join and split unchanged.
func validTag(t string) bool {
	return t != "" && !strings.Contains(t, ",")
}

// tagPredicate builds "(match OR match ...)" for column with one argument
// per tag. Each argument is the tag wrapped in commas so a tag only matches
// a whole element of the stored list.
func tagPredicate(d Dialect, column string, tags []string) (string, []any) {
	clauses := make([]string, len(tags))
	args := make([]any, len(tags))
	for i, t := range tags {
		clauses[i] = d.TagMatch(column)
		args[i] = "," + t + ","
	}
	return "(" + strings.Join(clauses, " OR ") + ")", args
}

// lookupByTags returns rows of t whose tags column contains any of tags.
// Tags that could never be stored, such as "a,b", match nothing.
func lookupByTags[T any](ctx context.Context, q queryRunner, t *Table[T], tags []string) ([]*T, error) {
	tags = cleanTags(tags)
	if len(tags) == 0 {
		return nil, nil
	}
	where, args := tagPredicate(q.dialect(), "tags", tags)
	return selectRows(ctx, q, t, "WHERE "+where+" ORDER BY id", args...)
}
