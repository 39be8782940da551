package cli

import (
	"bytes"
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/kensho/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/kensho/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/kensho/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
	"github.com/custodia-labs/kensho/internal/core/services"
	"github.com/custodia-labs/kensho/internal/postprocessors/chunker"
)

// stubLLM returns a fixed reply, or the reply registered for the system
// message it is sent.
type stubLLM struct {
	reply    string
	bySystem map[string]string
}

func (s *stubLLM) Chat(_ context.Context, msgs []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	for marker, reply := range s.bySystem {
		if len(msgs) > 0 && strings.Contains(msgs[0].Content, marker) {
			return reply, nil
		}
	}
	return s.reply, nil
}

func (s *stubLLM) ModelName() string            { return "stub" }
func (s *stubLLM) Ping(_ context.Context) error { return nil }
func (s *stubLLM) Close() error                 { return nil }

// studyReplies maps a phrase from each study system prompt to a canned reply.
var studyReplies = map[string]string{
	"flashcards":      `[{"question": "What are cats?", "answer": "Mammals", "difficulty": "easy", "bloom_level": "remember"}]`,
	"multiple-choice": quizReply,
	"summaries":       "Cats and dogs are mammals.",
	"Explain":         "A mammal nurses its young [source: pets.txt].",
}

const quizReply = `{"questions": [{"question": "Which animals are mammals?", ` +
	`"options": ["Cats", "Snakes", "Frogs", "Sharks"], "correct_answer": "A", ` +
	`"explanation": "Cats nurse their young."}]}`

// setupTestServices wires real services over in-memory stores and returns a
// cleanup func restoring the previous globals.
func setupTestServices() func() {
	prev := Services{
		Session:   sessionService,
		Ingest:    ingestService,
		Index:     indexService,
		Retrieval: retrievalService,
		Citation:  citationService,
		Answer:    answerService,
		Study:     studyService,
		Settings:  settingsService,
	}

	sessionStore := memory.NewSessionStore()
	indexStore := memory.NewIndexStore()
	embedder := services.NewEmbeddingProvider(hashing.NewEmbeddingService(hashing.DefaultDimensions), nil)
	indexes := services.NewIndexService(embedder, indexStore, sessionStore)
	sessions := services.NewSessionService(sessionStore, indexes, indexStore.Location)
	retrieval := services.NewRetrievalService(indexes, embedder, flat.Factory, sessionStore)
	llm := &stubLLM{reply: "Cats are mammals.", bySystem: studyReplies}

	SetServices(&Services{
		Session:   sessions,
		Ingest:    services.NewIngestService(sessions, sessionStore, indexes, chunker.New(), nil, nil),
		Index:     indexes,
		Retrieval: retrieval,
		Citation:  services.NewCitationService(),
		Answer:    services.NewAnswerService(retrieval, llm, nil),
		Study:     services.NewStudyService(retrieval, llm, nil),
		Settings:  services.NewSettingsService(memory.NewConfigStore(), nil),
	})
	resetFlags(rootCmd)

	return func() {
		SetServices(&prev)
		resetFlags(rootCmd)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	}
}

// resetFlags restores every flag to its default so commands do not see
// values left over from an earlier Execute.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the root command with args and returns combined output.
func run(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// runWithInput is run with stdin set to input.
func runWithInput(input string, args ...string) (string, error) {
	rootCmd.SetIn(strings.NewReader(input))
	defer rootCmd.SetIn(nil)
	return run(args...)
}

// testCommand returns a bare command carrying a background context.
func testCommand() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}
