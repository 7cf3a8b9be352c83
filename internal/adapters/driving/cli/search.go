package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

const snippetLength = 200

var (
	searchTopK       int
	searchMinScore   float64
	searchDocumentID string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search ingested RFPs",
	Long: `Embeds the query and returns the most similar chunks, best first.
Results can be limited to one document and filtered by a minimum similarity score.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "maximum number of results (0 = settings default)")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0, "drop results scoring below this similarity")
	searchCmd.Flags().StringVarP(&searchDocumentID, "document", "d", "", "restrict the search to one document ID")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if retrievalService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.RetrieveOptions{
		TopK:       searchTopK,
		MinScore:   searchMinScore,
		DocumentID: searchDocumentID,
	}

	passages, err := retrievalService.Retrieve(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		if passages == nil {
			passages = []domain.Passage{}
		}
		return printJSON(cmd, passages)
	}

	return outputSearchTable(cmd, passages)
}

func outputSearchTable(cmd *cobra.Command, passages []domain.Passage) error {
	if len(passages) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, p := range passages {
		// Format: [N] chunk-id (score)
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, p.ChunkID, p.Score)
		if p.Page > 0 {
			cmd.Printf("      Page: %d\n", p.Page)
		}
		cmd.Printf("      %s\n", snippet(p.Text))
		cmd.Println()
	}
	return nil
}

func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= snippetLength {
		return text
	}
	return string(runes[:snippetLength]) + "..."
}
