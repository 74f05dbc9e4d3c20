// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package database

import (
	"fmt"
	"strconv"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // registers "duckdb"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"
)

// Dialect captures the SQL differences between supported backends. Queries
// are written with "?" placeholders and rebound per dialect.
type Dialect interface {
	// Name is the configuration value selecting this dialect.
	Name() string

	// DriverName is the database/sql driver to open.
	DriverName() string

	// Rebind rewrites "?" placeholders into the backend's native form.
	Rebind(query string) string

	// IdentityColumn is the DDL for an auto-generated "id" primary key.
	IdentityColumn(table string) string

	// IdentityPrelude is DDL that must run before the table is created.
	IdentityPrelude(table string) []string

	// LastIdentitySQL reads the identity generated by the most recent insert
	// into table on the current connection.
	LastIdentitySQL(table string) string

	// TagMatch returns a predicate testing whether the comma-wrapped value of
	// column contains the single bound argument.
	TagMatch(column string) string
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3", "":
		return sqliteDialect{}, nil
	case "duckdb":
		return duckdbDialect{}, nil
	case "postgres", "postgresql", "pgx":
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, name)
	}
}

// wrapped is the comma-delimited form of a tag column.
func wrapped(column string) string {
	return "',' || " + column + " || ','"
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string                    { return "sqlite" }
func (sqliteDialect) DriverName() string              { return "sqlite" }
func (sqliteDialect) Rebind(q string) string          { return q }
func (sqliteDialect) IdentityPrelude(string) []string { return nil }
func (sqliteDialect) IdentityColumn(string) string {
	return "id INTEGER PRIMARY KEY AUTOINCREMENT"
}
func (sqliteDialect) LastIdentitySQL(string) string { return "SELECT last_insert_rowid()" }
func (sqliteDialect) TagMatch(column string) string {
	return "instr(" + wrapped(column) + ", ?) > 0"
}

type duckdbDialect struct{}

func (duckdbDialect) Name() string           { return "duckdb" }
func (duckdbDialect) DriverName() string     { return "duckdb" }
func (duckdbDialect) Rebind(q string) string { return q }
func (duckdbDialect) IdentityPrelude(table string) []string {
	return []string{"CREATE SEQUENCE IF NOT EXISTS " + table + "_id_seq START 1"}
}
func (duckdbDialect) IdentityColumn(table string) string {
	return "id BIGINT PRIMARY KEY DEFAULT nextval('" + table + "_id_seq')"
}
func (duckdbDialect) LastIdentitySQL(table string) string {
	return "SELECT currval('" + table + "_id_seq')"
}
func (duckdbDialect) TagMatch(column string) string {
	return "contains(" + wrapped(column) + ", ?)"
}

type postgresDialect struct{}

func (postgresDialect) Name() string                    { return "postgres" }
func (postgresDialect) DriverName() string              { return "pgx" }
func (postgresDialect) IdentityPrelude(string) []string { return nil }
func (postgresDialect) IdentityColumn(string) string    { return "id BIGSERIAL PRIMARY KEY" }
func (postgresDialect) LastIdentitySQL(string) string   { return "SELECT lastval()" }
func (postgresDialect) TagMatch(column string) string {
	return "strpos(" + wrapped(column) + ", ?) > 0"
}

// Rebind converts "?" to "$1", "$2", ... outside single-quoted literals.
func (postgresDialect) Rebind(q string) string {
	if !strings.Contains(q, "?") {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(q); i++ {
		c := q[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
