// Package cache memoises embeddings in front of another Embedder.
//
// Embeddings are deterministic for a given model, so repeated chunks and
// repeated retrieval queries can skip the network round trip.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
)

// Ensure Embedder implements the interface.
var _ driven.Embedder = (*Embedder)(nil)

// Embedder wraps another Embedder with an LRU cache keyed by model and text.
type Embedder struct {
	next  driven.Embedder
	cache *lru.Cache[string, []float32]
}

// New wraps next with a cache holding up to size vectors.
func New(next driven.Embedder, size int) (*Embedder, error) {
	if size <= 0 {
		return nil, fmt.Errorf("embedding cache: size must be positive, got %d", size)
	}
	c, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("embedding cache: %w", err)
	}
	return &Embedder{next: next, cache: c}, nil
}

func (e *Embedder) key(text string) string {
	h := sha256.New()
	h.Write([]byte(e.next.ModelName()))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Embed returns the cached vector or asks the wrapped embedder.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	k := e.key(text)
	if v, ok := e.cache.Get(k); ok {
		return v, nil
	}
	v, err := e.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(k, v)
	return v, nil
}

// EmbedBatch only forwards the texts that miss the cache.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))

	var missing []string
	var missingIdx []int
	for i, text := range texts {
		keys[i] = e.key(text)
		if v, ok := e.cache.Get(keys[i]); ok {
			out[i] = v
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	fresh, err := e.next.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missing) {
		return nil, fmt.Errorf("embedding cache: got %d vectors for %d texts", len(fresh), len(missing))
	}
	for j, i := range missingIdx {
		out[i] = fresh[j]
		e.cache.Add(keys[i], fresh[j])
	}
	return out, nil
}

// Dimensions returns the wrapped embedder's vector size.
func (e *Embedder) Dimensions() int { return e.next.Dimensions() }

// ModelName returns the wrapped embedder's model.
func (e *Embedder) ModelName() string { return e.next.ModelName() }

// Ping checks the wrapped embedder.
func (e *Embedder) Ping(ctx context.Context) error { return e.next.Ping(ctx) }

// Len returns the number of cached vectors.
func (e *Embedder) Len() int { return e.cache.Len() }

// Close purges the cache and closes the wrapped embedder.
func (e *Embedder) Close() error {
	e.cache.Purge()
	return e.next.Close()
}
