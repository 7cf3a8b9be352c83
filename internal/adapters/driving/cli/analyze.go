package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driving"
)

var (
	analyzeKinds    []string
	analyzePerChunk []string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [doc-id]",
	Short: "Run LLM analyses over an ingested RFP",
	Long: `Runs the requested analyses concurrently and prints the aggregated report.

Kinds: eligibility, requirements, risks, checklist, metadata, compliance.
By default every kind runs, with compliance checked chunk by chunk. A failed
analysis is reported in its own section and never hides the others.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&analyzeKinds, "kinds", nil, "analyses to run (default all)")
	analyzeCmd.Flags().StringSliceVar(&analyzePerChunk, "per-chunk", nil, "analyses to run chunk by chunk (default compliance)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	opts, err := analyzeOptions(analyzeKinds, analyzePerChunk)
	if err != nil {
		return err
	}

	report, err := analysisService.Analyze(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, report)
	}
	return outputReport(cmd, report)
}

// analyzeOptions mirrors the HTTP query semantics: explicit kinds drop the
// per-chunk default unless per-chunk kinds are given too.
func analyzeOptions(kinds, perChunk []string) (driving.AnalyzeOptions, error) {
	opts := driving.DefaultAnalyzeOptions()
	if len(kinds) > 0 {
		parsed, err := parseKinds(kinds)
		if err != nil {
			return opts, err
		}
		opts.Kinds = parsed
		opts.PerChunk = nil
	}
	if len(perChunk) > 0 {
		parsed, err := parseKinds(perChunk)
		if err != nil {
			return opts, err
		}
		opts.PerChunk = parsed
	}
	return opts, nil
}

func parseKinds(names []string) ([]domain.AnalysisKind, error) {
	kinds := make([]domain.AnalysisKind, 0, len(names))
	for _, n := range names {
		k, err := domain.ParseAnalysisKind(strings.TrimSpace(n))
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func outputReport(cmd *cobra.Command, report *domain.Report) error {
	cmd.Printf("Analysis %s of %s\n", report.RunID, report.DocumentID)
	if report.Status != "" {
		cmd.Printf("Status: %s\n", report.Status)
	}
	cmd.Println()

	for _, kind := range domain.ReportKinds() {
		section, err := report.Section(kind)
		if err != nil {
			return err
		}
		cmd.Printf("[%s]\n", kind)
		cmd.Println(string(section))
		cmd.Println()
	}

	failed := 0
	for _, t := range report.Tasks {
		if !t.OK {
			failed++
		}
	}
	cmd.Printf("Tasks: %d run, %d failed\n", len(report.Tasks), failed)
	return nil
}
