// Package sqlite provides the SQLite-backed session store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One database holds three tables:
//
//   - sessions: session identity and creation time
//   - documents: the append-only audit trail of ingested material
//   - chunks: each session's raw chunk list, the input to index rebuilds
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; only .up.sql files are applied.
//
// # Data Location
//
// By default, the database is stored at ~/.kensho/data/sessions.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. SQLite runs in WAL mode and
// multi-statement writes happen inside transactions.
package sqlite
