package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/services"
)

var (
	summaryType  string
	summaryWords int
	summaryJSON  bool

	flashcardCount int
	flashcardJSON  bool

	quizCount      int
	quizDifficulty string
	quizJSON       bool

	explainStyle string
	explainLimit int
	explainJSON  bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary [session]",
	Short: "Summarise a session's documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

var flashcardsCmd = &cobra.Command{
	Use:   "flashcards [session]",
	Short: "Generate flashcards from a session's documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runFlashcards,
}

var quizCmd = &cobra.Command{
	Use:   "quiz [session]",
	Short: "Generate a multiple-choice quiz from a session's documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuiz,
}

var explainCmd = &cobra.Command{
	Use:   "explain [session] [concept]",
	Short: "Explain a concept using a session's documents",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runExplain,
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryType, "type", "t", string(domain.SummaryComprehensive),
		"summary type (comprehensive, key_points, executive)")
	summaryCmd.Flags().IntVarP(&summaryWords, "words", "w", services.DefaultSummaryWords, "maximum summary length in words")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "output the summary as JSON")

	flashcardsCmd.Flags().IntVarP(&flashcardCount, "count", "n", services.DefaultFlashcards, "number of cards")
	flashcardsCmd.Flags().BoolVar(&flashcardJSON, "json", false, "output the cards as JSON")

	quizCmd.Flags().IntVarP(&quizCount, "count", "n", services.DefaultQuizQuestions, "number of questions")
	quizCmd.Flags().StringVarP(&quizDifficulty, "difficulty", "d", string(domain.DifficultyMedium),
		"question difficulty (easy, medium, hard, mixed)")
	quizCmd.Flags().BoolVar(&quizJSON, "json", false, "output the quiz as JSON")

	explainCmd.Flags().StringVarP(&explainStyle, "style", "s", string(domain.ExplainSimple),
		"explanation style (simple, detailed, analogy)")
	explainCmd.Flags().IntVarP(&explainLimit, "limit", "n", domain.DefaultTopK, "number of chunks given to the model")
	explainCmd.Flags().BoolVar(&explainJSON, "json", false, "output the explanation as JSON")

	rootCmd.AddCommand(summaryCmd, flashcardsCmd, quizCmd, explainCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}

	summary, err := studyService.Summary(cmd.Context(), args[0], domain.SummaryKind(summaryType), summaryWords)
	if err != nil {
		return studyError(err)
	}

	if summaryJSON {
		return printJSON(cmd, summary)
	}
	cmd.Println(summary.Text)
	cmd.Println()
	cmd.Printf("%d words from %d chunks\n", summary.WordCount, len(summary.SourceChunks))
	return nil
}

func runFlashcards(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}

	set, err := studyService.Flashcards(cmd.Context(), args[0], flashcardCount)
	if err != nil {
		return studyError(err)
	}

	if flashcardJSON {
		return printJSON(cmd, set)
	}
	for _, c := range set.Cards {
		label := fmt.Sprintf("%d.", c.ID)
		if c.Difficulty != "" {
			label += " (" + c.Difficulty + ")"
		}
		cmd.Printf("%s Q: %s\n", label, c.Question)
		cmd.Printf("   A: %s\n", c.Answer)
		cmd.Println()
	}
	return nil
}

func runQuiz(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}

	quiz, err := studyService.Quiz(cmd.Context(), args[0], quizCount, domain.QuizDifficulty(quizDifficulty))
	if err != nil {
		return studyError(err)
	}

	if quizJSON {
		return printJSON(cmd, quiz)
	}
	for i, q := range quiz.Questions {
		cmd.Printf("%d. %s\n", i+1, q.Question)
		for j, opt := range q.Options {
			cmd.Printf("   %c) %s\n", 'A'+j, opt)
		}
		cmd.Printf("   Answer: %s\n", q.CorrectAnswer)
		if q.Explanation != "" {
			cmd.Printf("   %s\n", q.Explanation)
		}
		cmd.Println()
	}
	return nil
}

func runExplain(cmd *cobra.Command, args []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}
	concept := strings.Join(args[1:], " ")

	exp, err := studyService.Explain(cmd.Context(), args[0], concept,
		domain.ExplainStyle(explainStyle), topK(cmd, explainLimit))
	if err != nil {
		return studyError(err)
	}

	if explainJSON {
		return printJSON(cmd, exp)
	}
	cmd.Println(exp.Text)
	cmd.Println()
	if len(exp.Sources) > 0 {
		cmd.Println("Sources:")
		for _, s := range exp.Sources {
			cmd.Printf("  - %s\n", describeSource(s))
		}
	}
	return nil
}

// studyError adds the command to run for errors the user can fix.
func studyError(err error) error {
	switch {
	case errors.Is(err, domain.ErrLLMUnavailable):
		return fmt.Errorf("%w: run 'kensho settings llm' to configure one", err)
	case errors.Is(err, domain.ErrIndexNotFound):
		return fmt.Errorf("%w: ingest documents first", err)
	}
	return err
}
