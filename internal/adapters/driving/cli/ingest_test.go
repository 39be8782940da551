package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kensho/internal/connectors/filesystem"
	"github.com/custodia-labs/kensho/internal/core/domain"
)

func TestIngestCmd_Subcommands(t *testing.T) {
	for _, name := range []string{"text", "pdf", "audio"} {
		c, _, err := ingestCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}
}

func TestIngestTextCmd_FromFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "lecture.md")
	require.NoError(t, os.WriteFile(path, []byte("Entropy always increases in an isolated system."), 0600))

	out, err := run("ingest", "text", "physics", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Ingested lecture.md: 1 chunks into physics")
}

func TestIngestTextCmd_FileURI(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "lecture.md")
	require.NoError(t, os.WriteFile(path, []byte("Entropy always increases in an isolated system."), 0600))

	out, err := run("ingest", "text", "physics", "file://"+path)

	require.NoError(t, err)
	assert.Contains(t, out, "Ingested lecture.md")
}

func TestIngestTextCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runWithInput("Entropy always increases in an isolated system.",
		"ingest", "text", "--json", "--source", "thermo", "physics", "-")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "physics", got["session_id"])
	assert.Equal(t, "thermo", got["source"])
	assert.Equal(t, "text", got["type"])
	assert.InDelta(t, 1, got["chunk_count"], 0)
}

func TestIngestTextCmd_EmptyInput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runWithInput("   ", "ingest", "text", "physics")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIngestion)
}

func TestIngestTextCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := run("ingest", "text", "physics", filepath.Join(t.TempDir(), "missing.txt"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read input")
}

func TestIngestPDFCmd_NoExtractor(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := run("ingest", "pdf", "physics", "slides.pdf")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIngestion)
}

func TestIngestAudioCmd_RejectsNonVideoURL(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := run("ingest", "audio", "--source", "https://example.com/talk", "physics", "talk.mp3")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestAudioCmd_NoTranscriber(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := run("ingest", "audio", "--source", "https://youtu.be/dQw4w9WgXcQ", "physics", "talk.mp3")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTranscriptionUnavailable)
}

func TestIngestFile_Text(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Newton's second law relates force and acceleration."), 0600))

	result, err := ingestFile(testCommand(), "physics", filesystem.Change{Path: path, Kind: filesystem.KindText})

	require.NoError(t, err)
	assert.Equal(t, "notes.txt", result.Document.Source)
	assert.Len(t, result.Chunks, 1)
}

func TestIngestFile_UnknownKind(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := ingestFile(testCommand(), "physics", filesystem.Change{Path: "x.bin"})

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestIngestTextCmd_StripsMarkdown(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "thermo.md")
	content := "# Thermodynamics\n\n**Entropy** always increases in an [isolated system](https://example.com)."
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	_, err := run("ingest", "text", "physics", path)
	require.NoError(t, err)

	out, err := run("select", "--json", "physics")
	require.NoError(t, err)

	var chunks []domain.Chunk
	require.NoError(t, json.Unmarshal([]byte(out), &chunks))
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Text, "Entropy always increases in an isolated system.")
	assert.NotContains(t, chunks[0].Text, "**")
	assert.NotContains(t, chunks[0].Text, "https://")
}
