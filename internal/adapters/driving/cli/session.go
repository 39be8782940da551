package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

var sessionJSON bool

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage study sessions",
	Long: `A session isolates a set of ingested documents and the index built over them.
Sessions are also created implicitly the first time a command names one.`,
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new session",
	Args:  cobra.NoArgs,
	RunE:  runSessionCreate,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [session]",
	Short: "Show a session and its documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete [session]",
	Short: "Delete a session and its index",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionDelete,
}

func init() {
	sessionListCmd.Flags().BoolVar(&sessionJSON, "json", false, "output as JSON")
	sessionShowCmd.Flags().BoolVar(&sessionJSON, "json", false, "output as JSON")
	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionCreate(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	session, err := sessionService.Create(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Println(session.ID)
	return nil
}

func runSessionList(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	sessions, err := sessionService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if sessionJSON {
		return printJSON(cmd, sessions)
	}
	if len(sessions) == 0 {
		cmd.Println("No sessions.")
		return nil
	}
	for i := range sessions {
		s := &sessions[i]
		cmd.Printf("  %s  %s  %d documents, %d chunks\n",
			s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), len(s.Documents), s.ChunkCount())
	}
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	session, err := sessionService.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if sessionJSON {
		return printJSON(cmd, session)
	}

	cmd.Printf("Session: %s\n", session.ID)
	cmd.Printf("Created: %s\n", session.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if session.IndexPath != "" {
		cmd.Printf("Index:   %s\n", session.IndexPath)
	}
	cmd.Println()
	if len(session.Documents) == 0 {
		cmd.Println("No documents ingested.")
		return nil
	}
	cmd.Println("Documents:")
	for _, d := range session.Documents {
		cmd.Printf("  [%s] %s\n", d.Type, d.Source)
		cmd.Printf("      %s\n", describeDocument(d))
	}
	return nil
}

func describeDocument(d domain.DocumentDescriptor) string {
	desc := fmt.Sprintf("%d chunks", d.ChunkCount)
	if d.Pages > 0 {
		desc = fmt.Sprintf("%d pages, %s", d.Pages, desc)
	}
	return desc + ", " + d.ProcessedAt.Local().Format("2006-01-02 15:04")
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	if err := sessionService.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Deleted session %s\n", args[0])
	return nil
}
