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
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [session] [query]",
	Short: "Search a session",
	Long: `Searches a session's documents by semantic similarity.
Falls back to keyword matching when the index has no vectors or cannot be
searched with the current embedding model.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

type searchOutput struct {
	Query      string                   `json:"query"`
	Strategy   domain.RetrievalStrategy `json:"strategy"`
	Results    []domain.SearchResult    `json:"results"`
	Sources    []domain.SourceRef       `json:"sources"`
	Confidence float64                  `json:"confidence"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	sessionID, query := args[0], args[1]

	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	retrieval, err := retrievalService.Search(cmd.Context(), sessionID, query, topK(cmd, searchLimit))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := searchOutput{
		Query:    query,
		Strategy: retrieval.Strategy,
		Results:  retrieval.Results,
	}
	if out.Results == nil {
		out.Results = []domain.SearchResult{}
	}
	if citationService != nil {
		out.Sources = citationService.ExtractSources(retrieval.Chunks())
		out.Confidence = citationService.Confidence(retrieval.Results, query)
	}
	if services.IsRecoverable(retrieval.FallbackCause) {
		cmd.PrintErrf("Index for %s is unusable (%v); run 'kensho index rebuild %s'\n",
			sessionID, retrieval.FallbackCause, sessionID)
	}

	if searchJSON {
		return printJSON(cmd, out)
	}
	return outputSearchTable(cmd, &out)
}

// topK returns the flag value, or the configured default when the flag was
// not given.
func topK(cmd *cobra.Command, flagVal int) int {
	if cmd.Flags().Changed("limit") || settingsService == nil {
		return flagVal
	}
	settings, err := settingsService.Get()
	if err != nil || settings.Retrieval.TopK <= 0 {
		return flagVal
	}
	return settings.Retrieval.TopK
}

func outputSearchTable(cmd *cobra.Command, out *searchOutput) error {
	if len(out.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results (%s):\n", out.Strategy)
	cmd.Println()
	for i := range out.Results {
		r := &out.Results[i]
		// Format: [N] source, location (score)
		label := r.Source
		if loc := r.SourceInfo.String(); loc != "" {
			label += ", " + loc
		}
		if r.Match == domain.MatchSemantic {
			cmd.Printf("  [%d] %s (%.2f)\n", r.Rank, label, r.Score)
		} else {
			cmd.Printf("  [%d] %s\n", r.Rank, label)
		}
		cmd.Printf("      %s\n", snippet(r.Text, 160))
		cmd.Println()
	}
	cmd.Printf("Confidence: %.2f\n", out.Confidence)
	return nil
}

// snippet flattens whitespace and truncates to maxRunes.
func snippet(text string, maxRunes int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= maxRunes {
		return flat
	}
	return string(runes[:maxRunes]) + "..."
}
