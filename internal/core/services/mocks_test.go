package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
)

// --- Mock implementations ---

// bagEmbedder is a deterministic bag-of-words embedder. Texts sharing
// words have positive cosine similarity.
type bagEmbedder struct {
	dims   int
	err    error
	calls  atomic.Int32
	vecFor map[string][]float32
}

func newBagEmbedder() *bagEmbedder {
	return &bagEmbedder{dims: 64}
}

func (e *bagEmbedder) vector(text string) []float32 {
	if v, ok := e.vecFor[text]; ok {
		return v
	}
	v := make([]float32, e.dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%uint32(e.dims)]++
	}
	return v
}

func (e *bagEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

func (e *bagEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *bagEmbedder) Dimensions() int              { return e.dims }
func (e *bagEmbedder) ModelName() string            { return "bag-of-words" }
func (e *bagEmbedder) Ping(_ context.Context) error { return e.err }
func (e *bagEmbedder) Close() error                 { return nil }

// stubSynthesizer answers prompts with reply and records what it saw.
type stubSynthesizer struct {
	reply func(prompt string) (string, error)
	delay time.Duration

	mu      sync.Mutex
	prompts []string
	systems []string

	active    atomic.Int32
	maxActive atomic.Int32
}

func (s *stubSynthesizer) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		m := s.maxActive.Load()
		if n <= m || s.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.systems = append(s.systems, opts.System)
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.reply == nil {
		return "", errors.New("no reply configured")
	}
	return s.reply(prompt)
}

func (s *stubSynthesizer) ModelName() string            { return "stub" }
func (s *stubSynthesizer) Ping(_ context.Context) error { return nil }
func (s *stubSynthesizer) Close() error                 { return nil }

func (s *stubSynthesizer) promptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// stubExtractors returns fixed pages for every file.
type stubExtractors struct {
	pages []domain.Page
	err   error
	calls atomic.Int32
}

func (x *stubExtractors) Extract(_ context.Context, _ string, _ []byte) ([]domain.Page, error) {
	x.calls.Add(1)
	if x.err != nil {
		return nil, x.err
	}
	return x.pages, nil
}

func (x *stubExtractors) Register(_ driven.Extractor) {}

func (x *stubExtractors) SupportedExtensions() []string { return []string{".pdf", ".docx"} }

func (x *stubExtractors) ContentType(filename string) string {
	if strings.HasSuffix(filename, ".docx") {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/pdf"
}

// failingIndex fails every operation.
type failingIndex struct{ err error }

func (f failingIndex) Index(_ context.Context, _ []driven.IndexRecord) error { return f.err }
func (f failingIndex) Search(_ context.Context, _ []float32, _ int, _ string) ([]driven.VectorHit, error) {
	return nil, f.err
}
func (f failingIndex) DeleteDocument(_ context.Context, _ string) (int, error) { return 0, f.err }
func (f failingIndex) Close() error                                            { return nil }

// fixedHitsIndex returns canned hits regardless of the query.
type fixedHitsIndex struct {
	hits  []driven.VectorHit
	gotK  int
	gotID string
}

func (f *fixedHitsIndex) Index(_ context.Context, _ []driven.IndexRecord) error { return nil }
func (f *fixedHitsIndex) Search(_ context.Context, _ []float32, k int, documentID string) ([]driven.VectorHit, error) {
	f.gotK, f.gotID = k, documentID
	hits := append([]driven.VectorHit{}, f.hits...)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
func (f *fixedHitsIndex) DeleteDocument(_ context.Context, _ string) (int, error) { return 0, nil }
func (f *fixedHitsIndex) Close() error                                            { return nil }

// failingBlobs fails Exists and Put.
type failingBlobs struct{ err error }

func (f failingBlobs) Exists(_ context.Context, _ string) (bool, error) { return false, f.err }
func (f failingBlobs) Put(_ context.Context, _ string, _ []byte, _ string) (string, error) {
	return "", f.err
}
func (f failingBlobs) Delete(_ context.Context, _ string) (bool, error) { return false, f.err }

// staticProfile serves a fixed company profile.
type staticProfile struct {
	profile *domain.CompanyProfile
	err     error
}

func (p staticProfile) Profile() (*domain.CompanyProfile, error) { return p.profile, p.err }

// mapPrompts serves prompts from a map.
type mapPrompts map[string]string

func (m mapPrompts) Load(name string) (string, error) {
	if p, ok := m[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m mapPrompts) Reload() {}
