package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

var (
	askLimit int
	askJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [session] [question]",
	Short: "Answer a question from a session's documents",
	Long: `Retrieves the most relevant chunks, asks the configured LLM to answer from
them and lists the pages and timestamps the answer cites.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", domain.DefaultTopK, "number of chunks given to the model")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}
	question := strings.Join(args[1:], " ")

	answer, err := answerService.Ask(cmd.Context(), args[0], question, topK(cmd, askLimit))
	if err != nil {
		if errors.Is(err, domain.ErrLLMUnavailable) {
			return fmt.Errorf("%w: run 'kensho settings llm' to configure one", err)
		}
		return err
	}

	if askJSON {
		return printJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	cmd.Println()
	if len(answer.Citations) > 0 {
		cmd.Printf("Cited: %s\n", strings.Join(answer.Citations, ", "))
	}
	if len(answer.Sources) > 0 {
		cmd.Println("Sources:")
		for _, s := range answer.Sources {
			cmd.Printf("  - %s\n", describeSource(s))
		}
	}
	cmd.Printf("Confidence: %.2f (%s)\n", answer.Confidence, answer.Strategy)
	return nil
}

func describeSource(s domain.SourceRef) string {
	switch {
	case s.Page > 0:
		return fmt.Sprintf("%s, page %d", s.Source, s.Page)
	case s.Timestamp != "":
		return fmt.Sprintf("%s at %s", s.Source, s.Timestamp)
	default:
		return s.Source
	}
}
