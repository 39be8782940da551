package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kensho/internal/connectors/filesystem"
	"github.com/custodia-labs/kensho/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [session] [dir]",
	Short: "Ingest files as they appear in a directory",
	Long: `Watches a directory and ingests text, markdown, PDF and audio files into
the session once they stop changing. Runs until interrupted.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	sessionID, dir := args[0], filesystem.ResolvePath(args[1])

	if sessionService != nil {
		if _, err := sessionService.Ensure(cmd.Context(), sessionID); err != nil {
			return err
		}
	}

	w := filesystem.New(dir)
	defer w.Close()

	changes, err := w.Watch(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s for %s (Ctrl+C to stop)\n", dir, sessionID)

	for change := range changes {
		result, err := ingestFile(cmd, sessionID, change)
		if err != nil {
			logger.Warn("ingest %s: %v", change.Path, err)
			cmd.PrintErrf("Skipped %s: %v\n", change.Path, err)
			continue
		}
		cmd.Printf("Ingested %s (%s): %d chunks\n", result.Document.Source, change.Kind, len(result.Chunks))
	}
	return nil
}
