// Package sqlite provides the SQLite-backed run history.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, so the bootstrapper cross-compiles to Windows from any host.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are tracked in schema_migrations.
//
// # Data Location
//
// The database lives at <project>/.bom-scrapper/history.db.
package sqlite
