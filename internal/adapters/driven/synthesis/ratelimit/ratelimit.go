// Package ratelimit throttles calls to a Synthesizer with a token bucket.
//
// Analysis fans out many tasks at once; the limiter keeps the burst within
// provider quotas without retrying anything itself.
package ratelimit

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
)

// Ensure Synthesizer implements the interface.
var _ driven.Synthesizer = (*Synthesizer)(nil)

// DefaultBurst is used when the caller passes a non-positive burst.
const DefaultBurst = 1

// Synthesizer delays Generate until the bucket has a token.
type Synthesizer struct {
	next    driven.Synthesizer
	limiter *rate.Limiter
}

// New wraps next with a limiter of rps requests per second.
// A non-positive rps disables limiting.
func New(next driven.Synthesizer, rps float64, burst int) *Synthesizer {
	if burst <= 0 {
		burst = DefaultBurst
	}
	limit := rate.Limit(rps)
	if rps <= 0 || math.IsInf(rps, 1) {
		limit = rate.Inf
	}
	return &Synthesizer{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Generate waits for a token, then forwards the call.
func (s *Synthesizer) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limit wait: %w", domain.ErrSynthesisFailure, err)
	}
	return s.next.Generate(ctx, prompt, opts)
}

// ModelName returns the wrapped model name.
func (s *Synthesizer) ModelName() string { return s.next.ModelName() }

// Ping is not rate limited.
func (s *Synthesizer) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close closes the wrapped synthesizer.
func (s *Synthesizer) Close() error { return s.next.Close() }
