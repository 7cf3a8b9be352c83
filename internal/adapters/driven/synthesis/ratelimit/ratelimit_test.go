package ratelimit

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
)

type stubSynthesizer struct {
	calls atomic.Int32
}

func (s *stubSynthesizer) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	s.calls.Add(1)
	return "ok", nil
}
func (s *stubSynthesizer) ModelName() string          { return "stub" }
func (s *stubSynthesizer) Ping(context.Context) error { return nil }
func (s *stubSynthesizer) Close() error               { return nil }

func TestGenerate_Unlimited(t *testing.T) {
	inner := &stubSynthesizer{}
	s := New(inner, 0, 0)

	for range 50 {
		out, err := s.Generate(context.Background(), "p", driven.GenerateOptions{})
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
	}
	assert.Equal(t, int32(50), inner.calls.Load())
	assert.Equal(t, "stub", s.ModelName())
}

func TestGenerate_ThrottlesBeyondBurst(t *testing.T) {
	inner := &stubSynthesizer{}
	s := New(inner, 20, 1)

	start := time.Now()
	for range 3 {
		_, err := s.Generate(context.Background(), "p", driven.GenerateOptions{})
		require.NoError(t, err)
	}
	// Two waits of 50ms each after the first token.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestGenerate_DeadlineWhileWaiting(t *testing.T) {
	inner := &stubSynthesizer{}
	s := New(inner, 0.1, 1)

	_, err := s.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = s.Generate(ctx, "p", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrSynthesisFailure)
	assert.Equal(t, int32(1), inner.calls.Load())
}
