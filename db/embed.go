// Package db provides the embedded SQL schemas of the market stores.
package db

import _ "embed"

// Schema contains the PostgreSQL DDL statements for all market tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// SQLiteSchema is the SQLite flavor of Schema. Prices are kept as text.
//
//go:embed sqlite/001_schema.sql
var SQLiteSchema string
