package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kensho/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
)

var studyTexts = []string{
	"[source: page 1]\nPhotosynthesis turns light into sugar.",
	"[source: page 2]\nChlorophyll absorbs red and blue light.",
	"[source: page 3]\nRespiration releases the stored energy.",
}

func newStudyFixture(t *testing.T, llm driven.LLMService) *StudyService {
	t.Helper()
	local := newMockEmbedding("local-model", 3)
	for i, text := range studyTexts {
		v := make([]float32, 3)
		v[i] = 1
		local.vectors[text] = v
	}
	local.vectors["photosynthesis"] = []float32{1, 0, 0}

	embedder := NewEmbeddingProvider(local, nil)
	indexes := NewIndexService(embedder, newMockIndexStore(), nil)

	chunks := make([]domain.Chunk, len(studyTexts))
	for i, text := range studyTexts {
		chunks[i] = domain.Chunk{
			ID:         i,
			Text:       text,
			Type:       domain.DocumentTypePDF,
			Source:     "plants.pdf",
			SourceInfo: domain.PageSource(i + 1),
		}
	}
	require.NoError(t, indexes.Build(context.Background(), "s1", chunks))

	svc := NewStudyService(NewRetrievalService(indexes, embedder, flat.Factory, nil), llm, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestStudyService_Flashcards(t *testing.T) {
	llm := &mockLLMService{reply: "Here are your cards:\n```json\n" +
		`[{"question": "What does photosynthesis make?", "answer": "Sugar", ` +
		`"difficulty": "easy", "bloom_level": "remember"},` +
		`{"question": "What absorbs light?", "answer": "Chlorophyll"}]` + "\n```"}
	svc := newStudyFixture(t, llm)

	set, err := svc.Flashcards(context.Background(), "s1", 2)
	require.NoError(t, err)

	require.Len(t, set.Cards, 2)
	assert.Equal(t, domain.Flashcard{
		ID: 1, Question: "What does photosynthesis make?", Answer: "Sugar",
		Difficulty: "easy", BloomLevel: "remember",
	}, set.Cards[0])
	assert.Equal(t, 2, set.Cards[1].ID)
	assert.Equal(t, []int{0, 1}, set.SourceChunks)
	assert.Equal(t, 2026, set.CreatedAt.Year())

	require.Len(t, llm.messages, 2)
	assert.Contains(t, llm.messages[1].Content, "Create 2 flashcards")
	assert.Contains(t, llm.messages[1].Content, "Chlorophyll absorbs")
	assert.NotContains(t, llm.messages[1].Content, "Respiration")
	assert.Equal(t, driven.ChatOptions{MaxTokens: 2000, Temperature: 0.4}, llm.opts)
}

func TestStudyService_FlashcardsTrimsExtraCards(t *testing.T) {
	llm := &mockLLMService{reply: `[{"question":"a","answer":"1"},{"question":"b","answer":"2"}]`}
	svc := newStudyFixture(t, llm)

	set, err := svc.Flashcards(context.Background(), "s1", 1)
	require.NoError(t, err)
	require.Len(t, set.Cards, 1)
	assert.Equal(t, "a", set.Cards[0].Question)
}

func TestStudyService_Quiz(t *testing.T) {
	llm := &mockLLMService{reply: `{"questions": [{"question": "What absorbs light?", ` +
		`"options": ["Chlorophyll", "Water", "Sugar", "Oxygen"], "correct_answer": 0, ` +
		`"explanation": "Page 2.", "difficulty": "hard"}]}`}
	svc := newStudyFixture(t, llm)

	quiz, err := svc.Quiz(context.Background(), "s1", 3, domain.DifficultyHard)
	require.NoError(t, err)

	require.Len(t, quiz.Questions, 1)
	q := quiz.Questions[0]
	assert.Equal(t, "What absorbs light?", q.Question)
	assert.Len(t, q.Options, 4)
	assert.Equal(t, domain.AnswerKey("A"), q.CorrectAnswer)
	assert.Equal(t, domain.DifficultyHard, quiz.Difficulty)
	assert.Equal(t, []int{0, 1, 2}, quiz.SourceChunks)

	assert.Contains(t, llm.messages[0].Content, "3 multiple-choice questions at hard difficulty")
	assert.Equal(t, driven.ChatOptions{MaxTokens: 2000, Temperature: 0.3}, llm.opts)
}

func TestStudyService_QuizDefaults(t *testing.T) {
	llm := &mockLLMService{reply: `[{"question": "q", "options": ["a", "b"], "correct_answer": "b"}]`}
	svc := newStudyFixture(t, llm)

	quiz, err := svc.Quiz(context.Background(), "s1", 0, "")
	require.NoError(t, err)

	assert.Equal(t, domain.DifficultyMedium, quiz.Difficulty)
	assert.Contains(t, llm.messages[1].Content, "Create 5 quiz questions")
	assert.Equal(t, domain.AnswerKey("b"), quiz.Questions[0].CorrectAnswer)
}

func TestStudyService_Summary(t *testing.T) {
	llm := &mockLLMService{reply: "  Plants make sugar from light.  "}
	svc := newStudyFixture(t, llm)

	sum, err := svc.Summary(context.Background(), "s1", domain.SummaryKeyPoints, 100)
	require.NoError(t, err)

	assert.Equal(t, "Plants make sugar from light.", sum.Text)
	assert.Equal(t, 5, sum.WordCount)
	assert.Equal(t, domain.SummaryKeyPoints, sum.Kind)
	assert.Equal(t, []int{0, 1, 2}, sum.SourceChunks)
	require.Len(t, sum.Sources, 1)
	assert.Equal(t, 1, sum.Sources[0].Page)

	assert.Contains(t, llm.messages[0].Content, "key_points")
	assert.Contains(t, llm.messages[1].Content, "at most 100 words")
	assert.Contains(t, llm.messages[1].Content, "Respiration releases")
}

func TestStudyService_Explain(t *testing.T) {
	llm := &mockLLMService{reply: "Light becomes sugar [source: page 1]."}
	prompts := &mockPromptStore{prompts: map[string]string{
		driven.PromptExplainSystem: "Teach.",
		driven.PromptExplainUser:   "C<%s> S<%s> X<%s>",
	}}
	svc := newStudyFixture(t, llm)
	svc.prompts = prompts

	exp, err := svc.Explain(context.Background(), "s1", " photosynthesis ", domain.ExplainAnalogy, 1)
	require.NoError(t, err)

	assert.Equal(t, "photosynthesis", exp.Concept)
	assert.Equal(t, []string{"page 1"}, exp.Citations)
	assert.Equal(t, domain.StrategySemantic, exp.Strategy)
	require.Len(t, exp.Sources, 1)
	assert.Equal(t, 1, exp.Sources[0].Page)
	assert.Equal(t, 1.0, exp.Confidence)

	assert.Equal(t, "Teach.", llm.messages[0].Content)
	assert.Equal(t,
		"C<photosynthesis> S<analogy> X<[source: page 1]\n"+studyTexts[0]+">",
		llm.messages[1].Content)
}

func TestStudyService_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		llm     driven.LLMService
		call    func(*StudyService) error
		wantErr error
	}{
		{
			name: "no llm",
			call: func(s *StudyService) error {
				_, err := s.Flashcards(ctx, "s1", 3)
				return err
			},
			wantErr: domain.ErrLLMUnavailable,
		},
		{
			name: "too many cards",
			llm:  &mockLLMService{},
			call: func(s *StudyService) error {
				_, err := s.Flashcards(ctx, "s1", MaxStudyItems+1)
				return err
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "negative quiz count",
			llm:  &mockLLMService{},
			call: func(s *StudyService) error {
				_, err := s.Quiz(ctx, "s1", -1, domain.DifficultyEasy)
				return err
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "unknown difficulty",
			llm:  &mockLLMService{},
			call: func(s *StudyService) error {
				_, err := s.Quiz(ctx, "s1", 2, "brutal")
				return err
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "unknown summary type",
			llm:  &mockLLMService{},
			call: func(s *StudyService) error {
				_, err := s.Summary(ctx, "s1", "haiku", 0)
				return err
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "empty concept",
			llm:  &mockLLMService{},
			call: func(s *StudyService) error {
				_, err := s.Explain(ctx, "s1", "  ", domain.ExplainSimple, 3)
				return err
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "nothing indexed",
			llm:  &mockLLMService{reply: "[]"},
			call: func(s *StudyService) error {
				_, err := s.Quiz(ctx, "missing", 2, domain.DifficultyEasy)
				return err
			},
			wantErr: domain.ErrIndexNotFound,
		},
		{
			name: "prose reply",
			llm:  &mockLLMService{reply: "Sorry, I cannot help with that."},
			call: func(s *StudyService) error {
				_, err := s.Flashcards(ctx, "s1", 2)
				return err
			},
			wantErr: domain.ErrGeneration,
		},
		{
			name: "chat failure",
			llm:  &mockLLMService{err: errors.New("rate limited")},
			call: func(s *StudyService) error {
				_, err := s.Summary(ctx, "s1", "", 0)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newStudyFixture(t, tt.llm)
			err := tt.call(svc)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseFlashcards(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    []string
		wantErr bool
	}{
		{"bare array", `[{"question":"q1","answer":"a1"}]`, []string{"q1"}, false},
		{"wrapped in prose", "Sure!\n[{\"question\":\"q1\",\"answer\":\"a1\"}]\nGood luck.", []string{"q1"}, false},
		{"drops incomplete", `[{"question":"q1"},{"question":"q2","answer":"a2"}]`, []string{"q2"}, false},
		{"no array", `{"question":"q1","answer":"a1"}`, nil, true},
		{"broken json", `[{"question":"q1",]`, nil, true},
		{"empty array", `[]`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, err := ParseFlashcards(tt.reply)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrGeneration)
				return
			}
			require.NoError(t, err)
			var got []string
			for i, c := range cards {
				assert.Equal(t, i+1, c.ID)
				got = append(got, c.Question)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQuiz(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    int
		wantErr bool
	}{
		{"object", `{"questions":[{"question":"q","options":["a","b"],"correct_answer":"a"}]}`, 1, false},
		{"bare array", `[{"question":"q","options":["a"]},{"question":"r","options":["b"]}]`, 2, false},
		{"fenced object", "```json\n{\"questions\":[{\"question\":\"q\",\"options\":[\"a\"]}]}\n```", 1, false},
		{"drops questions without options", `[{"question":"q","options":[]},{"question":"r","options":["b"]}]`, 1, false},
		{"no json", "no quiz today", 0, true},
		{"empty questions", `{"questions":[]}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs, err := ParseQuiz(tt.reply)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrGeneration)
				return
			}
			require.NoError(t, err)
			assert.Len(t, qs, tt.want)
		})
	}
}
