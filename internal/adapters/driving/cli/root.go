// Package cli provides the rfp command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driving"
	"github.com/custodia-labs/rfp-analyst/internal/logger"
)

// version is overridden at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// Services injected by the composition root.
var (
	ingestService    driving.IngestService
	documentService  driving.DocumentService
	retrievalService driving.RetrievalService
	analysisService  driving.AnalysisService
	settingsService  driving.SettingsService

	// supportedExtensions lists the file types the extractors understand.
	supportedExtensions []string
)

// Global flags.
var (
	verbose    bool
	jsonOutput bool
)

// Services groups the driving ports the commands call into.
type Services struct {
	Ingest     driving.IngestService
	Documents  driving.DocumentService
	Retrieval  driving.RetrievalService
	Analysis   driving.AnalysisService
	Settings   driving.SettingsService
	Extensions []string
}

var rootCmd = &cobra.Command{
	Use:   "rfp",
	Short: "Ingest, search and analyse requests for proposals",
	Long: `rfp ingests RFP documents (PDF, Word, HTML, text), indexes them for
similarity search, and runs concurrent LLM analyses: eligibility, requirements,
contract risks, submission checklist, metadata and compliance.

Duplicate uploads are detected by content hash before any processing.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
}

// SetServices installs the services used by every command.
func SetServices(s Services) {
	ingestService = s.Ingest
	documentService = s.Documents
	retrievalService = s.Retrieval
	analysisService = s.Analysis
	settingsService = s.Settings
	supportedExtensions = s.Extensions
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. Long-running commands stop when ctx is cancelled.
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
