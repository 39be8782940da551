// Package postgres provides a pgvector-backed index store.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore keeps session indexes in two tables. A save replaces a session's
// rows inside one transaction so readers never observe a partial index.
type IndexStore struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and applies the schema.
func Open(ctx context.Context, dsn string) (*IndexStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &IndexStore{pool: pool}, nil
}

// NewIndexStore wraps an existing pool. The schema must already exist.
func NewIndexStore(pool *pgxpool.Pool) *IndexStore {
	return &IndexStore{pool: pool}
}

// Close releases the pool.
func (s *IndexStore) Close() {
	s.pool.Close()
}

// Location names the table row backing a session.
func (s *IndexStore) Location(sessionID string) string {
	return "postgres:session_indexes/" + sessionID
}

// Save replaces the session's index.
func (s *IndexStore) Save(ctx context.Context, idx *domain.SessionIndex) error {
	if err := idx.Validate(); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `DELETE FROM session_indexes WHERE session_id = $1`, idx.SessionID); err != nil {
		return fmt.Errorf("clear previous index: %w", err)
	}
	p := idx.Provenance
	if _, err := tx.Exec(ctx,
		`INSERT INTO session_indexes (session_id, model, dimension, chunk_count, use_remote, built_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		idx.SessionID, p.Model, p.Dimension, p.ChunkCount, p.Remote, p.BuiltAt,
	); err != nil {
		return fmt.Errorf("insert provenance: %w", err)
	}

	batch := &pgx.Batch{}
	for i, chunk := range idx.Chunks {
		meta, err := json.Marshal(chunk)
		if err != nil {
			return fmt.Errorf("encode chunk %d: %w", i, err)
		}
		batch.Queue(
			`INSERT INTO session_index_chunks (session_id, position, metadata, embedding)
			 VALUES ($1, $2, $3, $4::vector)`,
			idx.SessionID, i, meta, pgvector.NewVector(idx.Vectors[i]),
		)
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert chunk %d: %w", i, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load reads the session's index in a repeatable-read snapshot.
func (s *IndexStore) Load(ctx context.Context, sessionID string) (*domain.SessionIndex, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // read-only

	idx := &domain.SessionIndex{SessionID: sessionID}
	p := &idx.Provenance
	err = tx.QueryRow(ctx,
		`SELECT model, dimension, chunk_count, use_remote, built_at
		 FROM session_indexes WHERE session_id = $1`, sessionID,
	).Scan(&p.Model, &p.Dimension, &p.ChunkCount, &p.Remote, &p.BuiltAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrIndexNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load provenance: %w", err)
	}

	rows, err := tx.Query(ctx,
		`SELECT metadata, embedding::text FROM session_index_chunks
		 WHERE session_id = $1 ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			meta  []byte
			embed pgvector.Vector
			chunk domain.Chunk
		)
		if err := rows.Scan(&meta, &embed); err != nil {
			return nil, fmt.Errorf("%w: scan chunk: %w", domain.ErrIndexCorruption, err)
		}
		if err := json.Unmarshal(meta, &chunk); err != nil {
			return nil, fmt.Errorf("%w: decode chunk: %w", domain.ErrIndexCorruption, err)
		}
		idx.Chunks = append(idx.Chunks, chunk)
		idx.Vectors = append(idx.Vectors, embed.Slice())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	if err := idx.Validate(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Delete removes the session's index. Chunks cascade.
func (s *IndexStore) Delete(ctx context.Context, sessionID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM session_indexes WHERE session_id = $1`, sessionID)
	if err != nil {
		return false, fmt.Errorf("delete index: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Stat reports provenance and the stored size of the session's rows.
func (s *IndexStore) Stat(ctx context.Context, sessionID string) (*domain.IndexStats, error) {
	stats := &domain.IndexStats{SessionID: sessionID}
	err := s.pool.QueryRow(ctx,
		`SELECT i.model, i.dimension, i.chunk_count, i.use_remote,
		        COALESCE((SELECT SUM(pg_column_size(c.metadata) + pg_column_size(c.embedding))
		                  FROM session_index_chunks c WHERE c.session_id = i.session_id), 0)::BIGINT
		 FROM session_indexes i WHERE i.session_id = $1`, sessionID,
	).Scan(&stats.Model, &stats.Dimension, &stats.ChunkCount, &stats.Remote, &stats.SizeBytes)
	if errors.Is(err, pgx.ErrNoRows) {
		return stats, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat index: %w", err)
	}
	stats.Exists = true
	return stats, nil
}

// List returns indexed session IDs in order.
func (s *IndexStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT session_id FROM session_indexes ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	return ids, nil
}
