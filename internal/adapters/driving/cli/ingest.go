package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kensho/internal/connectors/filesystem"
	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/services"
	"github.com/custodia-labs/kensho/internal/normalisers/markdown"
)

var (
	ingestSource string
	ingestJSON   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Add material to a session",
	Long: `Chunk a document, embed it and rebuild the session index.

The session is created if it does not exist yet. Each ingest re-indexes
everything in the session so search always covers all of its documents.`,
}

var ingestTextCmd = &cobra.Command{
	Use:   "text [session] [file]",
	Short: "Ingest a text or markdown file",
	Long:  `Ingest plain text from a file, or from stdin when the file is omitted or "-".`,
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runIngestText,
}

var ingestPDFCmd = &cobra.Command{
	Use:   "pdf [session] [file]",
	Short: "Ingest a PDF document",
	Args:  cobra.ExactArgs(2),
	RunE:  runIngestPDF,
}

var ingestAudioCmd = &cobra.Command{
	Use:   "audio [session] [file]",
	Short: "Transcribe and ingest a lecture recording",
	Long: `Transcribe an audio file and ingest the transcript.

Use --source to record the YouTube URL the audio was taken from; the URL
must name a video.`,
	Args: cobra.ExactArgs(2),
	RunE: runIngestAudio,
}

func init() {
	for _, c := range []*cobra.Command{ingestTextCmd, ingestPDFCmd, ingestAudioCmd} {
		c.Flags().BoolVar(&ingestJSON, "json", false, "output result as JSON")
		ingestCmd.AddCommand(c)
	}
	ingestTextCmd.Flags().StringVar(&ingestSource, "source", "", "source name recorded for citations")
	ingestAudioCmd.Flags().StringVar(&ingestSource, "source", "", "YouTube URL of the recording")
	rootCmd.AddCommand(ingestCmd)
}

func runIngestText(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	var (
		data   []byte
		err    error
		source = ingestSource
	)
	if len(args) < 2 || args[1] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
		if source == "" {
			source = "stdin"
		}
	} else {
		path := filesystem.ResolvePath(args[1])
		data, err = os.ReadFile(path)
		if source == "" {
			source = filepath.Base(path)
		}
		if err == nil && markdown.IsMarkdown(path) {
			data = []byte(markdown.Strip(string(data)))
		}
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	result, err := ingestService.Process(cmd.Context(), args[0], domain.RawContent{
		Type:   domain.DocumentTypeText,
		Source: source,
		Text:   string(data),
	})
	if err != nil {
		return err
	}
	return outputIngest(cmd, args[0], result)
}

func runIngestPDF(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	result, err := ingestService.IngestPDF(cmd.Context(), args[0], filesystem.ResolvePath(args[1]))
	if err != nil {
		return err
	}
	return outputIngest(cmd, args[0], result)
}

func runIngestAudio(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if ingestSource != "" {
		if _, err := services.ParseVideoID(ingestSource); err != nil {
			return err
		}
	}

	result, err := ingestService.IngestAudio(cmd.Context(), args[0], filesystem.ResolvePath(args[1]), ingestSource)
	if err != nil {
		return err
	}
	return outputIngest(cmd, args[0], result)
}

// ingestFile ingests a watched file according to its kind. Markdown is
// stripped to plain text; audio is recorded under its file name.
func ingestFile(cmd *cobra.Command, sessionID string, change filesystem.Change) (*domain.IngestResult, error) {
	ctx := cmd.Context()
	switch change.Kind {
	case filesystem.KindPDF:
		return ingestService.IngestPDF(ctx, sessionID, change.Path)
	case filesystem.KindAudio:
		return ingestService.IngestAudio(ctx, sessionID, change.Path, "")
	case filesystem.KindText:
		data, err := os.ReadFile(change.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrIngestion, err)
		}
		text := string(data)
		if markdown.IsMarkdown(change.Path) {
			text = markdown.Strip(text)
		}
		return ingestService.Process(ctx, sessionID, domain.RawContent{
			Type:   domain.DocumentTypeText,
			Source: filepath.Base(change.Path),
			Text:   text,
		})
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, change.Path)
	}
}

func outputIngest(cmd *cobra.Command, sessionID string, result *domain.IngestResult) error {
	if ingestJSON {
		return printJSON(cmd, map[string]any{
			"session_id":  sessionID,
			"type":        result.Document.Type,
			"source":      result.Document.Source,
			"pages":       result.Document.Pages,
			"chunk_count": len(result.Chunks),
		})
	}
	cmd.Printf("Ingested %s: %d chunks into %s\n", result.Document.Source, len(result.Chunks), sessionID)
	return nil
}
