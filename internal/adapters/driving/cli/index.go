package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

var indexJSON bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect and maintain session indexes",
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild [session]",
	Short: "Re-embed a session's chunks with the current embedding settings",
	Long: `Rebuild re-embeds every chunk of the session. Run it after changing the
embedding model, since an index can only be searched with the model that
built it.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndexRebuild,
}

var indexDeleteCmd = &cobra.Command{
	Use:   "delete [session]",
	Short: "Delete a session's index, keeping its documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexDelete,
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats [session]",
	Short: "Show index statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexStats,
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions that have an index",
	Args:  cobra.NoArgs,
	RunE:  runIndexList,
}

func init() {
	indexStatsCmd.Flags().BoolVar(&indexJSON, "json", false, "output as JSON")
	indexListCmd.Flags().BoolVar(&indexJSON, "json", false, "output as JSON")
	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexDeleteCmd)
	indexCmd.AddCommand(indexStatsCmd)
	indexCmd.AddCommand(indexListCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexRebuild(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	if err := indexService.Rebuild(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	cmd.Printf("Rebuilt index for %s\n", args[0])
	return nil
}

func runIndexDelete(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	deleted, err := indexService.Delete(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !deleted {
		cmd.Printf("No index for %s\n", args[0])
		return nil
	}
	cmd.Printf("Deleted index for %s\n", args[0])
	return nil
}

func runIndexStats(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	stats, err := indexService.Stats(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if indexJSON {
		return printJSON(cmd, stats)
	}
	if !stats.Exists {
		cmd.Printf("No index for %s\n", args[0])
		return nil
	}
	printStats(cmd, stats)
	return nil
}

func runIndexList(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	all, err := indexService.ListIndexed(cmd.Context())
	if err != nil {
		return err
	}
	if indexJSON {
		return printJSON(cmd, all)
	}
	if len(all) == 0 {
		cmd.Println("No indexed sessions.")
		return nil
	}
	for i := range all {
		printStats(cmd, &all[i])
		cmd.Println()
	}
	return nil
}

func printStats(cmd *cobra.Command, s *domain.IndexStats) {
	path := "local"
	if s.Remote {
		path = "remote"
	}
	cmd.Printf("Session:   %s\n", s.SessionID)
	cmd.Printf("Model:     %s (%s, %d dimensions)\n", s.Model, path, s.Dimension)
	cmd.Printf("Chunks:    %d\n", s.ChunkCount)
	cmd.Printf("Size:      %.2f MB\n", s.SizeMB())
}
