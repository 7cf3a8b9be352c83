package domain

// RetrieveOptions configures a similarity query.
type RetrieveOptions struct {
	// TopK is the maximum number of passages returned. Zero means the default.
	TopK int

	// MinScore drops hits scoring below it, compared against the raw score.
	MinScore float64

	// DocumentID restricts the query to one document when set.
	DocumentID string
}

// Passage is a retrieved chunk with its similarity score.
type Passage struct {
	// ChunkID identifies the matched chunk.
	ChunkID string `json:"chunk_id"`

	// DocumentID is the parent document.
	DocumentID string `json:"document_id"`

	// Text is the chunk content.
	Text string `json:"text"`

	// Page is the 1-based source page, or 0 when unknown.
	Page int `json:"page,omitempty"`

	// Score is the raw similarity reported by the index. Higher is closer.
	Score float64 `json:"score"`
}
