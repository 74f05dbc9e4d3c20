// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/safehold/internal/logging"
)

// Scope is an optional DELETE run before the writes of an overwrite. An
// empty Where means nothing is deleted.
type Scope struct {
	Where string
	Args  []any
}

// ScopeByBackup selects every child row owned by backupID.
func ScopeByBackup(backupID int64) Scope {
	return Scope{Where: "backup_id = ?", Args: []any{backupID}}
}

// OverwriteAndUpdate opens a transaction, applies the overwrite and commits.
// Any failure rolls the whole unit back.
func OverwriteAndUpdate[T any](ctx context.Context, db *DB, t *Table[T], scope Scope, values ...*T) (int64, error) {
	var affected int64
	err := db.WithTx(ctx, func(tx *Tx) error {
		n, err := OverwriteAndUpdateTx(ctx, tx, t, scope, values...)
		affected = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// OverwriteAndUpdateTx applies the overwrite inside a transaction owned by
// the caller. It never commits or rolls back tx; on error the caller must
// roll back.
//
// Entities with a non-zero identity are updated by identity. Others are
// inserted and receive the generated identity. An update matching no row
// is not an error; the returned count lets callers check.
func OverwriteAndUpdateTx[T any](ctx context.Context, tx *Tx, t *Table[T], scope Scope, values ...*T) (int64, error) {
	var total int64

	if scope.Where != "" {
		res, err := tx.exec(ctx, "delete", t.name, "DELETE FROM "+t.name+" WHERE "+scope.Where, scope.Args...)
		if err != nil {
			return 0, fmt.Errorf("failed to clear %s: %w", t.name, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			logging.Debug().Str("table", t.name).Int64("rows", n).Msg("Cleared rows before overwrite")
		}
	}

	for _, v := range values {
		n, err := writeRow(ctx, tx, t, v)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func writeRow[T any](ctx context.Context, tx *Tx, t *Table[T], v *T) (int64, error) {
	data, err := t.dataRow(v)
	if err != nil {
		return 0, err
	}

	if t.identity != nil {
		if id := t.identity.get(v); id != 0 {
			res, err := tx.exec(ctx, "update", t.name, t.updateSQL, append(data, id)...)
			if err != nil {
				return 0, fmt.Errorf("failed to update %s %d: %w", t.name, id, err)
			}
			return res.RowsAffected()
		}
	}

	res, err := tx.exec(ctx, "insert", t.name, t.insertSQL, data...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", t.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if t.identity != nil {
		var id int64
		if err := tx.queryRow(ctx, "select", t.name, tx.d.LastIdentitySQL(t.name)).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to read identity for %s: %w", t.name, err)
		}
		t.identity.set(v, id)
	}
	return n, nil
}

// deleteByID deletes one row by identity. Zero rows yields notFound; more
// than one row means the identity is not unique and the caller's
// transaction must be abandoned.
func deleteByID(ctx context.Context, tx *Tx, table string, id int64, notFound error) error {
	res, err := tx.exec(ctx, "delete", table, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	switch {
	case n == 0:
		return notFound
	case n > 1:
		logging.Warn().Str("table", table).Int64("id", id).Int64("rows", n).Msg("Delete by identity matched multiple rows")
		return fmt.Errorf("%w: deleting %s %d affected %d rows", ErrIntegrityViolation, table, id, n)
	}
	return nil
}
