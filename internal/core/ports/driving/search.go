package driving

import (
	"context"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

// RetrievalService answers similarity queries over indexed chunks.
type RetrievalService interface {
	// Retrieve returns passages scoring at least opts.MinScore, best first.
	// An empty result is not an error.
	Retrieve(ctx context.Context, query string, opts domain.RetrieveOptions) ([]domain.Passage, error)
}
