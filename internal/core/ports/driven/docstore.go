package driven

import (
	"context"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

// DocumentStore persists the document registry and chunk text.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// SaveDocument inserts a new document record.
	// Returns domain.ErrDuplicateContent if the ID is already registered.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document in sequence order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// UpdateStatus sets the lifecycle status of a document.
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error

	// DeleteDocument removes a document and its chunks.
	// Returns domain.ErrNotFound when nothing matched.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}
