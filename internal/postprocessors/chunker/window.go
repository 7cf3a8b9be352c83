package chunker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
)

// Ensure SlidingWindow implements the interface.
var _ driven.Chunker = (*SlidingWindow)(nil)

// SlidingWindow splits text into fixed-size overlapping windows.
// Sizes are measured in runes so multi-byte characters are never split.
type SlidingWindow struct {
	size    int
	overlap int
}

// Option configures the sliding window chunker.
type Option func(*SlidingWindow)

// WithChunkSize sets the window size in runes.
func WithChunkSize(size int) Option {
	return func(w *SlidingWindow) {
		w.size = size
	}
}

// WithOverlap sets the overlap between consecutive windows in runes.
func WithOverlap(overlap int) Option {
	return func(w *SlidingWindow) {
		w.overlap = overlap
	}
}

// NewSlidingWindow creates a window chunker. It rejects a non-positive size
// and an overlap outside [0, size).
func NewSlidingWindow(opts ...Option) (*SlidingWindow, error) {
	w := &SlidingWindow{
		size:    DefaultChunkSize,
		overlap: DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, w.size)
	}
	if w.overlap < 0 || w.overlap >= w.size {
		return nil, fmt.Errorf("%w: overlap must be in [0, %d), got %d", domain.ErrInvalidInput, w.size, w.overlap)
	}
	return w, nil
}

// Name returns the strategy name.
func (w *SlidingWindow) Name() string {
	return string(domain.ChunkStrategyWindow)
}

// Size returns the window size in runes.
func (w *SlidingWindow) Size() int { return w.size }

// Overlap returns the overlap in runes.
func (w *SlidingWindow) Overlap() int { return w.overlap }

// Chunk joins the trimmed non-empty pages with newlines and slides a window
// over the result with step size-overlap. The final window may be shorter.
// Each chunk records the page its first rune came from. A window holding
// only whitespace is dropped, so every non-space rune lands in a chunk but
// a run of spaces wider than a window may not.
func (w *SlidingWindow) Chunk(ctx context.Context, doc *domain.Document, pages []domain.Page) ([]domain.Chunk, error) {
	text, starts, numbers := joinPages(pages)
	if len(text) == 0 {
		return nil, nil
	}

	step := w.size - w.overlap
	chunks := make([]domain.Chunk, 0, len(text)/step+1)

	for start := 0; start < len(text); start += step {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+w.size, len(text))
		window := string(text[start:end])
		if strings.TrimSpace(window) != "" {
			chunks = append(chunks, newChunk(doc, len(chunks), pageAt(start, starts, numbers), window))
		}
		if end == len(text) {
			break
		}
	}
	return chunks, nil
}

// joinPages returns the joined runes plus, for each kept page, the rune
// offset where it starts and its page number.
func joinPages(pages []domain.Page) ([]rune, []int, []int) {
	var (
		text    []rune
		starts  []int
		numbers []int
	)
	for _, page := range pages {
		trimmed := strings.TrimSpace(page.Text)
		if trimmed == "" {
			continue
		}
		if len(text) > 0 {
			text = append(text, '\n')
		}
		starts = append(starts, len(text))
		numbers = append(numbers, page.Number)
		text = append(text, []rune(trimmed)...)
	}
	return text, starts, numbers
}

// pageAt finds the page containing rune offset pos. A separator newline
// belongs to the page before it.
func pageAt(pos int, starts, numbers []int) int {
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > pos })
	if i == 0 {
		return 0
	}
	return numbers[i-1]
}
