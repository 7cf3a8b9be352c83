package driving

import (
	"context"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

// IngestService accepts uploaded RFPs.
type IngestService interface {
	// Ingest hashes, extracts, chunks, embeds and registers a document.
	// Returns domain.ErrDuplicateContent if the same bytes were already ingested.
	Ingest(ctx context.Context, filename string, data []byte) (*domain.Document, error)
}

// DocumentService manages ingested documents.
type DocumentService interface {
	// List returns all registered documents, newest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Chunks returns a document's chunks in sequence order.
	Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// Delete removes the blob, registry record, chunks and vectors of the
	// document stored under hash and filename. Reports whether anything was removed.
	Delete(ctx context.Context, hash, filename string) (bool, error)
}
