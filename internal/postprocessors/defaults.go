package postprocessors

import (
	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
	"github.com/custodia-labs/rfp-analyst/internal/postprocessors/chunker"
)

// RegisterDefaults registers the built-in chunking strategies.
// Call this during application initialisation.
func RegisterDefaults(r *Registry) {
	r.Register(string(domain.ChunkStrategyPage), buildPageWise)
	r.Register(string(domain.ChunkStrategyWindow), buildWindow)
}

// NewChunker builds a chunker from settings using the default registry.
func NewChunker(cfg domain.ChunkingSettings) (driven.Chunker, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.Build(cfg)
}

func buildPageWise(_ domain.ChunkingSettings) (driven.Chunker, error) {
	return chunker.NewPageWise(), nil
}

// buildWindow creates a sliding window chunker. Zero size falls back to
// the default; explicit values are validated by the chunker.
func buildWindow(cfg domain.ChunkingSettings) (driven.Chunker, error) {
	var opts []chunker.Option
	if cfg.Size != 0 {
		opts = append(opts, chunker.WithChunkSize(cfg.Size), chunker.WithOverlap(cfg.Overlap))
	}
	return chunker.NewSlidingWindow(opts...)
}
