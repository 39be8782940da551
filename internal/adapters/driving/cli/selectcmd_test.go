package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

func TestSelectCmd_NoIndex(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := run("select", "empty")

	require.NoError(t, err)
	assert.Contains(t, out, "No indexed content in empty")
}

func TestSelectCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestPets(t)

	out, err := run("select", "--json", "-n", "3", "pets")
	require.NoError(t, err)

	var got []domain.Chunk
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "pets.txt", got[0].Source)
}

func TestSelectCmd_Text(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestPets(t)

	out, err := run("select", "pets")

	require.NoError(t, err)
	assert.Contains(t, out, "[0] pets.txt")
	assert.Contains(t, out, "Cats are mammals.")
}
