package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS session_indexes (
		session_id  TEXT PRIMARY KEY,
		model       TEXT NOT NULL,
		dimension   INTEGER NOT NULL,
		chunk_count INTEGER NOT NULL,
		use_remote  BOOLEAN NOT NULL DEFAULT FALSE,
		built_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS session_index_chunks (
		session_id TEXT NOT NULL REFERENCES session_indexes(session_id) ON DELETE CASCADE,
		position   INTEGER NOT NULL,
		metadata   JSONB NOT NULL,
		embedding  vector NOT NULL,
		PRIMARY KEY (session_id, position)
	)`,
}

// Migrate creates the extension and tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
