package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCitationsCmd_FromArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := run("citations", "As shown [source: page 2] and again [source: page 2].")

	require.NoError(t, err)
	assert.Equal(t, "page 2", strings.TrimSpace(out))
}

func TestCitationsCmd_FromStdin(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runWithInput("First [timestamp: 01:05], then [source: page 9].", "citations")

	require.NoError(t, err)
	assert.Contains(t, out, "timestamp 01:05")
	assert.Contains(t, out, "page 9")
}

func TestCitationsCmd_None(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := run("citations", "no markers here")

	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}
