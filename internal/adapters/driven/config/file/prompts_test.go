package file

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kensho/internal/core/ports/driven"
)

func TestNewPromptStore_DefaultsToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnv, home)

	store, err := NewPromptStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "prompts"), store.Dir())
}

func TestPromptStore_Load_WritesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	assert.NoDirExists(t, dir, "constructor must not touch disk")

	prompt, err := store.Load(driven.PromptAnswerUser)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptAnswerUser], prompt)

	assert.FileExists(t, filepath.Join(dir, driven.PromptAnswerSystem+".txt"))
	assert.FileExists(t, filepath.Join(dir, driven.PromptAnswerUser+".txt"))
}

func TestPromptStore_Load_CustomContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, driven.PromptAnswerSystem+".txt")
	require.NoError(t, os.WriteFile(path, []byte("  Be brief.  \n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)
	assert.Equal(t, "Be brief.", prompt)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "  Be brief.  \n", string(data), "existing file must not be overwritten")
}

func TestPromptStore_Load_EmptyFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, driven.PromptAnswerSystem+".txt"), []byte("\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptAnswerSystem], prompt)
}

func TestPromptStore_Load_Unknown(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nope")
	assert.Error(t, err)
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	path := filepath.Join(dir, driven.PromptAnswerSystem+".txt")

	_, err = store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("edited"), 0600))

	cached, err := store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)
	assert.NotEqual(t, "edited", cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)
	assert.Equal(t, "edited", fresh)
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Load(driven.PromptAnswerUser)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestPromptStore_DefaultPlaceholders(t *testing.T) {
	tests := []struct {
		name  string
		verbs []string
	}{
		{driven.PromptAnswerSystem, nil},
		{driven.PromptAnswerUser, []string{"%s", "%s"}},
		{driven.PromptSummarySystem, []string{"%s"}},
		{driven.PromptSummaryUser, []string{"%s", "%d", "%s"}},
		{driven.PromptFlashcardsSystem, nil},
		{driven.PromptFlashcardsUser, []string{"%d", "%s"}},
		{driven.PromptQuizSystem, []string{"%d", "%s"}},
		{driven.PromptQuizUser, []string{"%d", "%s"}},
		{driven.PromptExplainSystem, nil},
		{driven.PromptExplainUser, []string{"%s", "%s", "%s"}},
	}

	verb := regexp.MustCompile(`%[sd]`)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, ok := defaultPrompts[tt.name]
			require.True(t, ok)
			assert.Equal(t, tt.verbs, verb.FindAllString(prompt, -1))
		})
	}
	assert.Len(t, defaultPrompts, len(tests))
}

func TestPromptStore_Load_WritesStudyDefaults(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptQuizSystem)
	require.NoError(t, err)
	assert.Contains(t, prompt, `"questions" array`)
	assert.FileExists(t, filepath.Join(dir, driven.PromptFlashcardsUser+".txt"))
	assert.FileExists(t, filepath.Join(dir, driven.PromptExplainSystem+".txt"))
}
