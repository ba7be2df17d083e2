// Package sqlite persists semantic index snapshots as SQLite files.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, with github.com/jmoiron/sqlx for row mapping. Each corpus
// lives in its own database file:
//
//	<dir>/<escaped key>.db
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory and applied whenever a file is written.
//
// # Atomicity
//
// Save writes a complete database to a temporary file next to the target
// and renames it into place. Readers never observe a half-written index,
// and concurrent writers of one key leave the last rename in place.
//
// # Data Location
//
// By default, index files are stored under ~/.lexis/indexes.
package sqlite
