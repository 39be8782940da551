package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/kensho/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SessionStore = (*Store)(nil)

// Store is a SQLite-backed session store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a store in dataDir.
// If dataDir is empty, defaults to ~/.kensho/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".kensho", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "sessions.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies pending .up.sql migrations in version order.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_init.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Create stores a new session.
func (s *Store) Create(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at) VALUES (?, ?)`,
		session.ID, session.CreatedAt.UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("session %s: %w", session.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// Get retrieves a session with its documents.
func (s *Store) Get(ctx context.Context, id string) (*domain.Session, error) {
	session := &domain.Session{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at FROM sessions WHERE id = ?`, id,
	).Scan(&session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	docs, err := s.documents(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Documents = docs
	return session, nil
}

func (s *Store) documents(ctx context.Context, sessionID string) ([]domain.DocumentDescriptor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, source, pages, chunk_count, processed_at
		 FROM documents WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.DocumentDescriptor
	for rows.Next() {
		var (
			d       domain.DocumentDescriptor
			docType string
		)
		if err := rows.Scan(&docType, &d.Source, &d.Pages, &d.ChunkCount, &d.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		d.Type = domain.DocumentType(docType)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// List returns all sessions, newest first.
func (s *Store) List(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sessions := make([]domain.Session, 0, len(ids))
	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, nil
}

// Delete removes a session. Documents and chunks cascade.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// AppendDocument records the descriptor and its chunks in one transaction.
func (s *Store) AppendDocument(
	ctx context.Context, id string, doc domain.DocumentDescriptor, chunks []domain.Chunk,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking session: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}

	var nextChunk int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE session_id = ?`, id).Scan(&nextChunk); err != nil {
		return fmt.Errorf("counting chunks: %w", err)
	}
	for i, c := range chunks {
		if c.ID != nextChunk+i {
			return fmt.Errorf("%w: chunk id %d, want %d", domain.ErrInvalidInput, c.ID, nextChunk+i)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (session_id, seq, type, source, pages, chunk_count, processed_at)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM documents WHERE session_id = ?), ?, ?, ?, ?, ?)`,
		id, id, string(doc.Type), doc.Source, doc.Pages, doc.ChunkCount, doc.ProcessedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (session_id, id, text, type, source, source_info, chunk_index, total_chunks)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		info, err := c.SourceInfo.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encoding source info: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			id, c.ID, c.Text, string(c.Type), c.Source, string(info), c.ChunkIndex, c.TotalChunks,
		); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// GetChunks returns the session's chunks ordered by ID.
func (s *Store) GetChunks(ctx context.Context, id string) ([]domain.Chunk, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking session: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, type, source, source_info, chunk_index, total_chunks
		 FROM chunks WHERE session_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *c)
	}
	return chunks, rows.Err()
}

func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var (
		c        domain.Chunk
		docType  string
		infoJSON string
	)
	if err := rows.Scan(&c.ID, &c.Text, &docType, &c.Source, &infoJSON, &c.ChunkIndex, &c.TotalChunks); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	c.Type = domain.DocumentType(docType)
	if err := c.SourceInfo.UnmarshalJSON([]byte(infoJSON)); err != nil {
		return nil, fmt.Errorf("decoding chunk %d: %w", c.ID, err)
	}
	return &c, nil
}
