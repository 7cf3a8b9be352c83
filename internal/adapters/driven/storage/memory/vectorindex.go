package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory cosine similarity index.
type VectorIndex struct {
	mu      sync.RWMutex
	records map[string]driven.IndexRecord
}

// NewVectorIndex creates an empty index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{records: make(map[string]driven.IndexRecord)}
}

// Index upserts records.
func (v *VectorIndex) Index(_ context.Context, records []driven.IndexRecord) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, r := range records {
		r.Embedding = append([]float32(nil), r.Embedding...)
		v.records[r.ID] = r
	}
	return nil
}

// Search returns the k records with the highest cosine similarity.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int, documentID string) ([]driven.VectorHit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(v.records))
	for _, r := range v.records {
		if documentID != "" && r.DocumentID != documentID {
			continue
		}
		if len(r.Embedding) != len(query) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ID:         r.ID,
			DocumentID: r.DocumentID,
			Text:       r.Text,
			Page:       r.Page,
			Score:      cosineSimilarity(query, r.Embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if k >= 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// DeleteDocument removes every record of a document.
func (v *VectorIndex) DeleteDocument(_ context.Context, documentID string) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for id, r := range v.records {
		if r.DocumentID == documentID {
			delete(v.records, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored records.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.records)
}

// Close is a no-op.
func (v *VectorIndex) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
