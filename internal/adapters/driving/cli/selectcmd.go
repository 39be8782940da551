package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

var (
	selectCount int
	selectJSON  bool
)

var selectCmd = &cobra.Command{
	Use:   "select [session]",
	Short: "Pick chunks to seed summaries, flashcards or quizzes",
	Args:  cobra.ExactArgs(1),
	RunE:  runSelect,
}

func init() {
	selectCmd.Flags().IntVarP(&selectCount, "count", "n", 10, "number of chunks to select")
	selectCmd.Flags().BoolVar(&selectJSON, "json", false, "output chunks as JSON")
	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	chunks, err := retrievalService.SelectForGeneration(cmd.Context(), args[0], selectCount)
	if err != nil {
		return err
	}

	if selectJSON {
		if chunks == nil {
			chunks = []domain.Chunk{}
		}
		return printJSON(cmd, chunks)
	}
	if len(chunks) == 0 {
		cmd.Printf("No indexed content in %s\n", args[0])
		return nil
	}
	for _, c := range chunks {
		header := fmt.Sprintf("[%d] %s", c.ID, c.Source)
		if marker := c.SourceInfo.Marker(); marker != "" {
			header += " " + marker
		}
		cmd.Println(header)
		cmd.Println(c.Text)
		cmd.Println()
	}
	return nil
}
