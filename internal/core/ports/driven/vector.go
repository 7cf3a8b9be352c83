package driven

import "context"

// VectorIndex stores chunk embeddings and answers nearest-neighbour queries.
// Implementations are externally synchronised and safe for concurrent use.
type VectorIndex interface {
	// Index upserts records. Records with an existing ID are replaced.
	Index(ctx context.Context, records []IndexRecord) error

	// Search returns up to k records closest to query, best first.
	// A non-empty documentID restricts the search to that document.
	Search(ctx context.Context, query []float32, k int, documentID string) ([]VectorHit, error)

	// DeleteDocument removes every record of a document and returns the count.
	DeleteDocument(ctx context.Context, documentID string) (int, error)

	// Close releases resources.
	Close() error
}

// IndexRecord is one persisted vector with the metadata needed to rebuild a passage.
type IndexRecord struct {
	ID         string
	DocumentID string
	Text       string
	Page       int
	Embedding  []float32
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	ID         string
	DocumentID string
	Text       string
	Page       int

	// Score is the backend's raw similarity. Higher is closer.
	Score float64
}
