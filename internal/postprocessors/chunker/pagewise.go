package chunker

import (
	"context"
	"strings"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
)

// Ensure PageWise implements the interface.
var _ driven.Chunker = (*PageWise)(nil)

// PageWise emits one chunk per non-empty page.
type PageWise struct{}

// NewPageWise creates a page-wise chunker.
func NewPageWise() *PageWise {
	return &PageWise{}
}

// Name returns the strategy name.
func (p *PageWise) Name() string {
	return string(domain.ChunkStrategyPage)
}

// Chunk trims every page and drops those left empty. Sequence numbers stay
// dense; the page number is carried through unchanged.
func (p *PageWise) Chunk(ctx context.Context, doc *domain.Document, pages []domain.Page) ([]domain.Chunk, error) {
	chunks := make([]domain.Chunk, 0, len(pages))
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := strings.TrimSpace(page.Text)
		if text == "" {
			continue
		}
		chunks = append(chunks, newChunk(doc, len(chunks), page.Number, text))
	}
	return chunks, nil
}
