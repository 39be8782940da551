package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/kensho/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads prompt templates from <dir>/<name>.txt, falling back to
// embedded defaults. Files are created lazily on the first Load.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

var defaultPrompts = map[string]string{
	driven.PromptAnswerSystem: `You answer questions about the user's documents using only the supplied context.
Each context block starts with a marker such as [source: page 3] or [timestamp: 01:22].
When a statement comes from a block, repeat that block's marker after the statement.
If the context does not contain the answer, say so.`,

	driven.PromptAnswerUser: `Context:
---
%s
---

Question: %s`,

	driven.PromptSummarySystem: `You write %s summaries of study material.
Use only the supplied content. Keep the main ideas, key terms and their relationships.`,

	driven.PromptSummaryUser: `Write a %s summary of at most %d words of the following content.

Content:
---
%s
---`,

	driven.PromptFlashcardsSystem: `You are an educator who writes flashcards that follow Bloom's taxonomy.
Spread the cards across remembering, understanding, applying and analysing.
Return only a JSON array. Each element has the fields
"question", "answer", "difficulty" (easy, medium or hard) and "bloom_level".`,

	driven.PromptFlashcardsUser: `Create %d flashcards from the following content.
Return them as a JSON array.

Content:
---
%s
---`,

	driven.PromptQuizSystem: `You write multiple-choice quizzes. Write %d questions at %s difficulty.
Each question has exactly 4 options and one correct answer.
Return only a JSON object with a "questions" array. Each element has the fields
"question", "options", "correct_answer", "explanation" and "difficulty".`,

	driven.PromptQuizUser: `Create %d quiz questions from the following content.
Return a JSON object with a "questions" array.

Content:
---
%s
---`,

	driven.PromptExplainSystem: `You explain concepts to students. Build on the supplied context first and
repeat its source markers, such as [source: page 3], when you use a block.
You may add general knowledge where the context is thin.`,

	driven.PromptExplainUser: `Explain the concept "%s" in a %s style.

Context:
---
%s
---`,
}

// NewPromptStore creates a prompt store. If promptDir is empty, Home()/prompts
// is used. No I/O happens until Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := Home()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template for name. A missing or unreadable file falls back
// to the embedded default.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil {
		if def, ok := defaultPrompts[name]; ok {
			return def, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the cache.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise writes default files that do not exist yet.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("prompt %q is empty", name)
	}
	return prompt, nil
}
