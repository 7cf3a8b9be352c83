package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driving"
	"github.com/custodia-labs/rfp-analyst/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// DefaultTopK is used when neither the request nor the settings set one.
const DefaultTopK = 5

// Retriever embeds a query and returns the closest indexed passages.
// It must use the same embedder that indexed the chunks.
type Retriever struct {
	embedder driven.Embedder
	index    driven.VectorIndex
	topK     int
}

// NewRetriever creates a retriever. topK is used for requests that do not
// set one; values below 1 mean DefaultTopK.
func NewRetriever(embedder driven.Embedder, index driven.VectorIndex, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{embedder: embedder, index: index, topK: topK}
}

// Retrieve returns up to opts.TopK passages scoring at least opts.MinScore,
// best first. Ties are ordered by chunk ID. An empty result is not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, opts domain.RetrieveOptions) ([]domain.Passage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Passage{}, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = r.topK
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := r.index.Search(ctx, vec, topK, opts.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	passages := make([]domain.Passage, 0, len(hits))
	for _, h := range hits {
		// The threshold is compared against the backend's raw score.
		if h.Score < opts.MinScore {
			continue
		}
		passages = append(passages, domain.Passage{
			ChunkID:    h.ID,
			DocumentID: h.DocumentID,
			Text:       h.Text,
			Page:       h.Page,
			Score:      h.Score,
		})
	}

	sort.SliceStable(passages, func(i, j int) bool {
		if passages[i].Score != passages[j].Score {
			return passages[i].Score > passages[j].Score
		}
		return passages[i].ChunkID < passages[j].ChunkID
	})
	if len(passages) > topK {
		passages = passages[:topK]
	}

	logger.Debug("retrieve %q: %d hits, %d above %.3f", query, len(hits), len(passages), opts.MinScore)
	return passages, nil
}
