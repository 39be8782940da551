package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var citationsCmd = &cobra.Command{
	Use:   "citations [text]",
	Short: "List the source markers in a piece of text",
	Long: `Prints the distinct locations cited in the text by markers such as
"[source: page 3]" or "[timestamp: 04:12]". Reads stdin when no text is given.`,
	RunE: runCitations,
}

func init() {
	rootCmd.AddCommand(citationsCmd)
}

func runCitations(cmd *cobra.Command, args []string) error {
	if citationService == nil {
		return errors.New("citation service not configured")
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		text = string(data)
	}

	for _, c := range citationService.ExtractCitations(text) {
		cmd.Println(c)
	}
	return nil
}
