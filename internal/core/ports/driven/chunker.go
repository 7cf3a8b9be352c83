package driven

import (
	"context"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

// Chunker splits a document's pages into retrievable chunks.
// Implementations are pure: the same input always yields the same chunks.
type Chunker interface {
	// Name returns the strategy name for logging and configuration.
	Name() string

	// Chunk returns chunks with dense 0-based sequences and IDs derived
	// from the document ID.
	Chunk(ctx context.Context, doc *domain.Document, pages []domain.Page) ([]domain.Chunk, error)
}
