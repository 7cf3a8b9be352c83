package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"document", "docs"},
	Short:   "Inspect ingested RFPs",
	Long:    `List ingested RFPs, show one, or print its chunks.`,
	RunE:    runDocumentList,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested RFPs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentChunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "Print document chunks with page numbers",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentChunks,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentChunksCmd)
	rootCmd.AddCommand(documentCmd)
}

// documentView is the JSON shape of a document on the command line.
type documentView struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Pages       int       `json:"pages"`
	Chunks      int       `json:"chunks"`
	Words       int       `json:"words"`
	Status      string    `json:"status"`
	Location    string    `json:"location"`
	IngestedAt  time.Time `json:"ingested_at"`
}

func newDocumentViews(docs []domain.Document) []documentView {
	views := make([]documentView, len(docs))
	for i := range docs {
		d := &docs[i]
		views[i] = documentView{
			ID:          d.ID,
			Filename:    d.Filename,
			ContentType: d.ContentType,
			Size:        d.Size,
			Pages:       d.PageCount,
			Chunks:      d.ChunkCount,
			Words:       d.WordCount,
			Status:      string(d.Status),
			Location:    d.Location,
			IngestedAt:  d.CreatedAt,
		}
	}
	return views
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, newDocumentViews(docs))
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    File:   %s\n", docs[i].Filename)
		cmd.Printf("    Status: %s\n", docs[i].Status)
		cmd.Printf("    Pages:  %d, Chunks: %d\n", docs[i].PageCount, docs[i].ChunkCount)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, newDocumentViews([]domain.Document{*doc})[0])
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  File:      %s\n", doc.Filename)
	cmd.Printf("  Type:      %s\n", doc.ContentType)
	cmd.Printf("  Size:      %d bytes\n", doc.Size)
	cmd.Printf("  Pages:     %d\n", doc.PageCount)
	cmd.Printf("  Chunks:    %d\n", doc.ChunkCount)
	cmd.Printf("  Words:     %d\n", doc.WordCount)
	cmd.Printf("  Status:    %s\n", doc.Status)
	cmd.Printf("  Location:  %s\n", doc.Location)
	cmd.Printf("  Ingested:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))

	if doc.Preview != "" {
		cmd.Println("\n  Preview:")
		cmd.Printf("    %s\n", doc.Preview)
	}
	return nil
}

func runDocumentChunks(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	chunks, err := documentService.Chunks(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	if jsonOutput {
		type chunkView struct {
			ID       string `json:"id"`
			Sequence int    `json:"sequence"`
			Page     int    `json:"page,omitempty"`
			Text     string `json:"text"`
		}
		views := make([]chunkView, len(chunks))
		for i, c := range chunks {
			views[i] = chunkView{ID: c.ID, Sequence: c.Sequence, Page: c.Page, Text: c.Text}
		}
		return printJSON(cmd, views)
	}

	for _, c := range chunks {
		if c.HasPage() {
			cmd.Printf("--- chunk %d (page %d) ---\n", c.Sequence, c.Page)
		} else {
			cmd.Printf("--- chunk %d ---\n", c.Sequence)
		}
		cmd.Println(c.Text)
		cmd.Println()
	}
	return nil
}
