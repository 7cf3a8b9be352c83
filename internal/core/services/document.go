package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driving"
	"github.com/custodia-labs/rfp-analyst/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages ingested documents.
type DocumentService struct {
	docs  driven.DocumentStore
	index driven.VectorIndex
	blobs driven.BlobStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(docs driven.DocumentStore, index driven.VectorIndex, blobs driven.BlobStore) *DocumentService {
	return &DocumentService{docs: docs, index: index, blobs: blobs}
}

// List returns all registered documents, newest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docs.ListDocuments(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docs.GetDocument(ctx, documentID)
}

// Chunks returns a document's chunks in sequence order.
func (s *DocumentService) Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if _, err := s.docs.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.docs.GetChunks(ctx, documentID)
}

// Delete removes the upload stored under hash and filename: the blob, the
// registry record with its chunks, and the indexed vectors. The registry
// record is only removed when it was registered under the same filename.
// Reports whether anything was removed.
func (s *DocumentService) Delete(ctx context.Context, hash, filename string) (bool, error) {
	if hash == "" || filename == "" {
		return false, fmt.Errorf("%w: hash and filename are required", domain.ErrInvalidInput)
	}

	key := BlobKey(hash, filename)
	blobDeleted, err := s.blobs.Delete(ctx, key)
	if err != nil {
		return false, fmt.Errorf("delete blob %s: %w", key, err)
	}

	recordDeleted := false
	doc, err := s.docs.GetDocument(ctx, hash)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return blobDeleted, fmt.Errorf("look up %s: %w", hash, err)
	case doc.Filename == sanitizeFilename(filename):
		if err := s.docs.DeleteDocument(ctx, hash); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return blobDeleted, fmt.Errorf("delete record %s: %w", hash, err)
		}
		recordDeleted = true

		n, err := s.index.DeleteDocument(ctx, hash)
		if err != nil {
			return true, fmt.Errorf("delete vectors %s: %w", hash, err)
		}
		logger.Debug("deleted %d vectors for %s", n, hash)
	}

	logger.Info("delete %s: blob=%t record=%t", key, blobDeleted, recordDeleted)
	return blobDeleted || recordDeleted, nil
}
