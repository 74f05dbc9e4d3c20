// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Column maps one scalar attribute of T to one table column. Columns are
// built with the typed constructors below and never inspect T at runtime.
type Column[T any] struct {
	name   string
	holder func() any
	encode func(*T) (any, error)
	decode func(v *T, holder any, lenient bool) error
}

// Name returns the column name.
func (c Column[T]) Name() string {
	return c.name
}

// IntColumn maps an int64 attribute.
func IntColumn[T any](name string, field func(*T) *int64) Column[T] {
	return Column[T]{
		name:   name,
		holder: func() any { return new(sql.NullInt64) },
		encode: func(v *T) (any, error) { return *field(v), nil },
		decode: func(v *T, h any, _ bool) error {
			*field(v) = h.(*sql.NullInt64).Int64
			return nil
		},
	}
}

// StringColumn maps a string attribute. NULL reads as "".
func StringColumn[T any](name string, field func(*T) *string) Column[T] {
	return Column[T]{
		name:   name,
		holder: func() any { return new(sql.NullString) },
		encode: func(v *T) (any, error) { return *field(v), nil },
		decode: func(v *T, h any, _ bool) error {
			*field(v) = h.(*sql.NullString).String
			return nil
		},
	}
}

// NullStringColumn maps a *string attribute, keeping NULL and "" distinct.
func NullStringColumn[T any](name string, field func(*T) **string) Column[T] {
	return Column[T]{
		name:   name,
		holder: func() any { return new(sql.NullString) },
		encode: func(v *T) (any, error) {
			p := *field(v)
			if p == nil {
				return sql.NullString{}, nil
			}
			return sql.NullString{String: *p, Valid: true}, nil
		},
		decode: func(v *T, h any, _ bool) error {
			ns := h.(*sql.NullString)
			if !ns.Valid {
				*field(v) = nil
				return nil
			}
			s := ns.String
			*field(v) = &s
			return nil
		},
	}
}

// BoolColumn maps a bool attribute stored as 0/1.
func BoolColumn[T any](name string, field func(*T) *bool) Column[T] {
	return Column[T]{
		name:   name,
		holder: func() any { return new(sql.NullInt64) },
		encode: func(v *T) (any, error) {
			if *field(v) {
				return int64(1), nil
			}
			return int64(0), nil
		},
		decode: func(v *T, h any, _ bool) error {
			*field(v) = h.(*sql.NullInt64).Int64 != 0
			return nil
		},
	}
}

// TimeColumn maps a time.Time attribute stored as UTC epoch seconds. The
// zero time.Time is stored as 0 and 0 reads back as the zero time.Time.
func TimeColumn[T any](name string, field func(*T) *time.Time) Column[T] {
	return Column[T]{
		name:   name,
		holder: func() any { return new(sql.NullInt64) },
		encode: func(v *T) (any, error) { return epochSeconds(*field(v)), nil },
		decode: func(v *T, h any, _ bool) error {
			*field(v) = fromEpochSeconds(h.(*sql.NullInt64).Int64)
			return nil
		},
	}
}

// TagsColumn maps a []string attribute onto one comma-joined text column.
func TagsColumn[T any](name string, field func(*T) *[]string) Column[T] {
	return Column[T]{
		name:   name,
		holder: func() any { return new(sql.NullString) },
		encode: func(v *T) (any, error) { return joinTags(*field(v)), nil },
		decode: func(v *T, h any, _ bool) error {
			*field(v) = splitTags(h.(*sql.NullString).String)
			return nil
		},
	}
}

// EnumColumn maps an integer enumeration stored by name. names is indexed
// by the enumeration value. Reading unknown text fails with
// ErrUnknownEnumValue unless the table is lenient, in which case the first
// declared value is used.
func EnumColumn[T any, E ~int](name string, names []string, field func(*T) *E) Column[T] {
	return Column[T]{
		name:   name,
		holder: func() any { return new(sql.NullString) },
		encode: func(v *T) (any, error) {
			i := int(*field(v))
			if i < 0 || i >= len(names) {
				return nil, fmt.Errorf("%w: %s=%d", ErrUnknownEnumValue, name, i)
			}
			return names[i], nil
		},
		decode: func(v *T, h any, lenient bool) error {
			text := h.(*sql.NullString).String
			for i, n := range names {
				if n == text {
					*field(v) = E(i)
					return nil
				}
			}
			if lenient {
				*field(v) = E(0)
				return nil
			}
			return fmt.Errorf("%w: %s=%q", ErrUnknownEnumValue, name, text)
		},
	}
}

// Identity describes an auto-generated integer primary key. A zero value
// means "not yet persisted".
type Identity[T any] struct {
	name string
	get  func(*T) int64
	set  func(*T, int64)
}

// NewIdentity declares the identity column of a table.
func NewIdentity[T any](name string, get func(*T) int64, set func(*T, int64)) *Identity[T] {
	return &Identity[T]{name: name, get: get, set: set}
}

// Table is the compile-time descriptor of how T is stored. Declare one per
// entity at package level and reuse it for every read and write.
type Table[T any] struct {
	name     string
	identity *Identity[T]
	columns  []Column[T]
	lenient  bool

	selectSQL string
	insertSQL string
	updateSQL string
}

// NewTable declares a table. identity may be nil for child tables.
func NewTable[T any](name string, identity *Identity[T], columns ...Column[T]) *Table[T] {
	t := &Table[T]{name: name, identity: identity, columns: columns}

	data := make([]string, len(columns))
	marks := make([]string, len(columns))
	sets := make([]string, len(columns))
	for i, c := range columns {
		data[i] = c.name
		marks[i] = "?"
		sets[i] = c.name + " = ?"
	}

	t.selectSQL = "SELECT " + strings.Join(t.Columns(), ", ") + " FROM " + name
	t.insertSQL = "INSERT INTO " + name + " (" + strings.Join(data, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
	if identity != nil {
		t.updateSQL = "UPDATE " + name + " SET " + strings.Join(sets, ", ") + " WHERE " + identity.name + " = ?"
	}
	return t
}

// Name returns the table name.
func (t *Table[T]) Name() string {
	return t.name
}

// Lenient returns a copy that maps unknown enumeration text to the first
// declared value instead of failing.
func (t *Table[T]) Lenient() *Table[T] {
	c := *t
	c.lenient = true
	return &c
}

// Columns lists column names in declaration order, identity first.
func (t *Table[T]) Columns() []string {
	out := make([]string, 0, len(t.columns)+1)
	if t.identity != nil {
		out = append(out, t.identity.name)
	}
	for _, c := range t.columns {
		out = append(out, c.name)
	}
	return out
}

// FromRow allocates a zero T and fills it positionally from a row selected
// with Columns().
func (t *Table[T]) FromRow(row rowScanner) (*T, error) {
	holders := make([]any, 0, len(t.columns)+1)
	var id sql.NullInt64
	if t.identity != nil {
		holders = append(holders, &id)
	}
	for _, c := range t.columns {
		holders = append(holders, c.holder())
	}

	if err := row.Scan(holders...); err != nil {
		return nil, err
	}

	v := new(T)
	offset := 0
	if t.identity != nil {
		t.identity.set(v, id.Int64)
		offset = 1
	}
	for i, c := range t.columns {
		if err := c.decode(v, holders[i+offset], t.lenient); err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
	}
	return v, nil
}

// ToRow returns the values of v in Columns() order.
func (t *Table[T]) ToRow(v *T) ([]any, error) {
	data, err := t.dataRow(v)
	if err != nil {
		return nil, err
	}
	if t.identity == nil {
		return data, nil
	}
	return append([]any{t.identity.get(v)}, data...), nil
}

// dataRow returns the non-identity values of v.
func (t *Table[T]) dataRow(v *T) ([]any, error) {
	out := make([]any, len(t.columns))
	for i, c := range t.columns {
		val, err := c.encode(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
		out[i] = val
	}
	return out, nil
}

// selectRows runs the table's SELECT followed by tail ("WHERE ... ORDER BY ...").
func selectRows[T any](ctx context.Context, q queryRunner, t *Table[T], tail string, args ...any) ([]*T, error) {
	query := t.selectSQL
	if tail != "" {
		query += " " + tail
	}

	rows, err := q.query(ctx, "select", t.name, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.name, err)
	}
	defer closeWithLog(rows, "rows")

	var out []*T
	for rows.Next() {
		v, err := t.FromRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.name, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", t.name, err)
	}
	return out, nil
}

// selectOne returns the first matching row, or nil when there is none.
func selectOne[T any](ctx context.Context, q queryRunner, t *Table[T], tail string, args ...any) (*T, error) {
	rows, err := selectRows(ctx, q, t, tail, args...)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func epochSeconds(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromEpochSeconds(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(n, 0).UTC()
}
