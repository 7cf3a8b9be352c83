package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest RFP files",
	Long: `Extracts, chunks and embeds each file, then stores it for search and analysis.

A file whose bytes were already ingested is reported as a duplicate and skipped,
whatever its name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [hash] [filename]",
	Short: "Delete an ingested RFP",
	Long:  `Removes the stored original, registry record, chunks and vectors of a document.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := cmd.Context()
	var ingested []domain.Document
	var failed int
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
			continue
		}

		doc, err := ingestService.Ingest(ctx, filepath.Base(path), data)
		switch {
		case errors.Is(err, domain.ErrDuplicateContent):
			cmd.PrintErrf("%s: %v\n", path, domain.ErrDuplicateContent)
			failed++
			continue
		case err != nil:
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
			continue
		}
		ingested = append(ingested, *doc)

		if !jsonOutput {
			cmd.Printf("Ingested %s\n", doc.Filename)
			cmd.Printf("  ID:     %s\n", doc.ID)
			cmd.Printf("  Pages:  %d\n", doc.PageCount)
			cmd.Printf("  Chunks: %d\n", doc.ChunkCount)
		}
	}

	if jsonOutput {
		if err := printJSON(cmd, newDocumentViews(ingested)); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files not ingested", failed, len(args))
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := cmd.Context()
	hash, filename := args[0], args[1]
	deleted, err := documentService.Delete(ctx, hash, filename)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: %s/%s", domain.ErrNotFound, hash, filename)
	}

	cmd.Printf("Deleted %s (%s)\n", filename, hash)
	return nil
}
