package domain

import "time"

// DocumentStatus tracks where a document is in its lifecycle.
type DocumentStatus string

// Document lifecycle states.
const (
	// DocumentStatusIndexed means chunks and vectors have been stored.
	DocumentStatusIndexed DocumentStatus = "indexed"

	// DocumentStatusAccepted means eligibility analysis passed.
	DocumentStatusAccepted DocumentStatus = "accepted"

	// DocumentStatusRejected means eligibility analysis failed.
	DocumentStatusRejected DocumentStatus = "rejected"
)

// Document is a single uploaded RFP, identified by the SHA-256 of its bytes.
// It is immutable once created apart from its analysis status.
type Document struct {
	// ID is the lowercase hex SHA-256 digest of the raw bytes.
	ID string

	// Filename is the original upload name. It is part of the blob key
	// but never part of the hash.
	Filename string

	// ContentType is the MIME type inferred from the extension.
	ContentType string

	// Size is the raw byte length.
	Size int64

	// PageCount is the number of pages the extractor returned.
	PageCount int

	// ChunkCount is the number of chunks stored for the document.
	ChunkCount int

	// WordCount is the number of whitespace-separated words extracted.
	WordCount int

	// Preview holds the leading extracted text for listings.
	Preview string

	// Location is where the blob store put the original bytes.
	Location string

	// Status is the lifecycle state.
	Status DocumentStatus

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Page is one page of extracted text. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Chunk is a contiguous span of a document's extracted text.
type Chunk struct {
	// ID is "<documentID>_chunk_<sequence>".
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Sequence is the 0-based position among the document's chunks.
	Sequence int

	// Page is the 1-based source page, or 0 when unknown.
	Page int

	// Text is the chunk content. Never empty after trimming.
	Text string

	// Embedding is the vector representation, populated at ingestion.
	Embedding []float32
}

// HasPage reports whether the chunk carries a page number.
func (c Chunk) HasPage() bool {
	return c.Page > 0
}
