// Package cli implements the kensho command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kensho/internal/core/ports/driving"
	"github.com/custodia-labs/kensho/internal/logger"
)

var version = "dev"

// Services wired in by main.
var (
	sessionService   driving.SessionService
	ingestService    driving.IngestService
	indexService     driving.IndexService
	retrievalService driving.RetrievalService
	citationService  driving.CitationService
	answerService    driving.AnswerService
	studyService     driving.StudyService
	settingsService  driving.SettingsService
)

// Services groups the driving ports the commands call.
type Services struct {
	Session   driving.SessionService
	Ingest    driving.IngestService
	Index     driving.IndexService
	Retrieval driving.RetrievalService
	Citation  driving.CitationService
	Answer    driving.AnswerService
	Study     driving.StudyService
	Settings  driving.SettingsService
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "kensho",
	Short: "Study sessions over your own documents",
	Long: `Kensho ingests PDFs, notes and lecture recordings into study sessions,
indexes them for semantic search and answers questions with citations back
to the page or timestamp they came from.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices installs the services used by all commands.
func SetServices(s *Services) {
	sessionService = s.Session
	ingestService = s.Ingest
	indexService = s.Index
	retrievalService = s.Retrieval
	citationService = s.Citation
	answerService = s.Answer
	studyService = s.Study
	settingsService = s.Settings
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
