package chunker

import (
	"fmt"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

// DefaultChunkSize is the default number of runes per window.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping runes.
const DefaultChunkOverlap = 100

// chunkID derives the stable chunk identifier used by every index backend.
func chunkID(documentID string, seq int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, seq)
}

func newChunk(doc *domain.Document, seq, page int, text string) domain.Chunk {
	return domain.Chunk{
		ID:         chunkID(doc.ID, seq),
		DocumentID: doc.ID,
		Sequence:   seq,
		Page:       page,
		Text:       text,
	}
}
