package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
	"github.com/custodia-labs/kensho/internal/logger"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// Artifact file names.
const (
	currentFile    = "CURRENT"
	vectorsFile    = "vector_index.bin"
	metadataFile   = "chunk_metadata.json"
	provenanceFile = "embedding_info.json"
	genPrefix      = "gen-"
	tmpPrefix      = ".tmp-"

	loadAttempts = 3
)

var validSessionID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// IndexStore keeps session indexes in generation directories under root.
type IndexStore struct {
	root string
}

// NewIndexStore creates a store rooted at dir, creating it if needed.
func NewIndexStore(dir string) (*IndexStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	return &IndexStore{root: dir}, nil
}

// Location returns the session's directory.
func (s *IndexStore) Location(sessionID string) string {
	return filepath.Join(s.root, sessionID)
}

func (s *IndexStore) sessionDir(sessionID string) (string, error) {
	if !validSessionID.MatchString(sessionID) || strings.Contains(sessionID, "..") {
		return "", fmt.Errorf("%w: session id %q", domain.ErrInvalidInput, sessionID)
	}
	return filepath.Join(s.root, sessionID), nil
}

// Save writes a new generation and switches CURRENT to it.
func (s *IndexStore) Save(ctx context.Context, idx *domain.SessionIndex) error {
	if err := idx.Validate(); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}
	dir, err := s.sessionDir(idx.SessionID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	previous, _ := readCurrent(dir)
	gen := fmt.Sprintf("%s%d-%s", genPrefix, time.Now().UnixNano(), uuid.NewString()[:8])
	staging := filepath.Join(dir, tmpPrefix+gen)

	if err := writeGeneration(staging, idx); err != nil {
		_ = os.RemoveAll(staging)
		return err
	}
	if err := ctx.Err(); err != nil {
		_ = os.RemoveAll(staging)
		return err
	}
	if err := os.Rename(staging, filepath.Join(dir, gen)); err != nil {
		_ = os.RemoveAll(staging)
		return fmt.Errorf("publish generation: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, currentFile), []byte(gen+"\n")); err != nil {
		return fmt.Errorf("switch current generation: %w", err)
	}

	s.prune(dir, gen, previous)
	return nil
}

func writeGeneration(dir string, idx *domain.SessionIndex) error {
	if err := os.Mkdir(dir, 0o700); err != nil {
		return fmt.Errorf("create generation: %w", err)
	}

	var vectors bytes.Buffer
	if err := writeVectors(&vectors, idx.Vectors, idx.Provenance.Dimension); err != nil {
		return fmt.Errorf("encode vectors: %w", err)
	}
	metadata, err := json.Marshal(idx.Chunks)
	if err != nil {
		return fmt.Errorf("encode chunk metadata: %w", err)
	}
	provenance, err := json.MarshalIndent(idx.Provenance, "", "  ")
	if err != nil {
		return fmt.Errorf("encode provenance: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{vectorsFile, vectors.Bytes()},
		{metadataFile, metadata},
		{provenanceFile, provenance},
	}
	for _, f := range files {
		if err := writeSynced(filepath.Join(dir, f.name), f.data); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}

// prune removes generations other than keep and previous, plus abandoned
// staging directories.
func (s *IndexStore) prune(dir, keep, previous string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || name == keep || name == previous {
			continue
		}
		if strings.HasPrefix(name, genPrefix) || strings.HasPrefix(name, tmpPrefix) {
			if err := os.RemoveAll(filepath.Join(dir, name)); err != nil {
				logger.Warn("index store: could not prune %s: %v", name, err)
			}
		}
	}
}

// Load resolves CURRENT and reads that generation. If the generation vanishes
// underneath the read because of a concurrent save, it re-resolves CURRENT and
// tries again.
func (s *IndexStore) Load(ctx context.Context, sessionID string) (*domain.SessionIndex, error) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < loadAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		gen, err := readCurrent(dir)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrIndexNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("session %s: %w: %w", sessionID, domain.ErrIndexCorruption, err)
		}

		idx, err := readGeneration(filepath.Join(dir, gen), sessionID)
		if err == nil {
			return idx, nil
		}
		lastErr = err

		if again, _ := readCurrent(dir); again == gen {
			break
		}
	}
	return nil, fmt.Errorf("session %s: %w", sessionID, lastErr)
}

func readGeneration(dir, sessionID string) (*domain.SessionIndex, error) {
	f, err := os.Open(filepath.Join(dir, vectorsFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexCorruption, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexCorruption, err)
	}
	vectors, dimension, err := readVectors(f, info.Size())
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexCorruption, err)
	}

	idx := &domain.SessionIndex{SessionID: sessionID, Vectors: vectors}
	if err := readJSON(filepath.Join(dir, metadataFile), &idx.Chunks); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, provenanceFile), &idx.Provenance); err != nil {
		return nil, err
	}
	if idx.Provenance.Dimension != dimension {
		return nil, fmt.Errorf("%w: provenance dimension %d, vector file dimension %d",
			domain.ErrIndexCorruption, idx.Provenance.Dimension, dimension)
	}
	if err := idx.Validate(); err != nil {
		return nil, err
	}
	return idx, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexCorruption, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %w", domain.ErrIndexCorruption, filepath.Base(path), err)
	}
	return nil
}

// Delete removes the session directory.
func (s *IndexStore) Delete(_ context.Context, sessionID string) (bool, error) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(filepath.Join(dir, currentFile)); errors.Is(err, fs.ErrNotExist) {
		// Stray staging directories are removed but do not count as an index.
		_ = os.RemoveAll(dir)
		return false, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("delete index: %w", err)
	}
	return true, nil
}

// Stat reads provenance and artifact sizes without decoding vectors.
func (s *IndexStore) Stat(_ context.Context, sessionID string) (*domain.IndexStats, error) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return nil, err
	}
	stats := &domain.IndexStats{SessionID: sessionID}

	gen, err := readCurrent(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return stats, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexCorruption, err)
	}

	genDir := filepath.Join(dir, gen)
	var prov domain.IndexProvenance
	if err := readJSON(filepath.Join(genDir, provenanceFile), &prov); err != nil {
		return nil, err
	}
	for _, name := range []string{vectorsFile, metadataFile, provenanceFile} {
		if info, err := os.Stat(filepath.Join(genDir, name)); err == nil {
			stats.SizeBytes += info.Size()
		}
	}

	stats.Exists = true
	stats.Model = prov.Model
	stats.Dimension = prov.Dimension
	stats.ChunkCount = prov.ChunkCount
	stats.Remote = prov.Remote
	return stats, nil
}

// List returns session IDs that have a CURRENT pointer, sorted.
func (s *IndexStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list index directory: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, e.Name(), currentFile)); err == nil {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func readCurrent(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, currentFile))
	if err != nil {
		return "", err
	}
	gen := strings.TrimSpace(string(data))
	if !strings.HasPrefix(gen, genPrefix) || strings.ContainsAny(gen, `/\`) {
		return "", fmt.Errorf("invalid generation pointer %q", gen)
	}
	return gen, nil
}

// writeFileAtomic writes data beside path and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + tmpPrefix + uuid.NewString()[:8]
	if err := writeSynced(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func writeSynced(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
