package driving

import (
	"context"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

// AnalysisService runs structured analyses over a document.
type AnalysisService interface {
	// Analyze fans out one task per requested kind (or per chunk, for kinds
	// in opts.PerChunk) and aggregates the results into a Report.
	// Per-task failures are recorded in the report, never returned.
	Analyze(ctx context.Context, documentID string, opts AnalyzeOptions) (*domain.Report, error)
}

// AnalyzeOptions selects what to analyse.
type AnalyzeOptions struct {
	// Kinds to run. Empty means every report kind.
	Kinds []domain.AnalysisKind

	// PerChunk lists kinds analysed chunk by chunk instead of by topic query.
	// Kinds listed here run even when absent from Kinds.
	PerChunk []domain.AnalysisKind
}

// DefaultAnalyzeOptions runs every kind, with compliance checked chunk by chunk.
func DefaultAnalyzeOptions() AnalyzeOptions {
	return AnalyzeOptions{PerChunk: []domain.AnalysisKind{domain.AnalysisCompliance}}
}
