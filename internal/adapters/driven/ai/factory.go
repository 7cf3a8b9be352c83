// Package ai provides factory functions for creating embedding and synthesis adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	embedcache "github.com/custodia-labs/rfp-analyst/internal/adapters/driven/embedding/cache"
	ollamaembed "github.com/custodia-labs/rfp-analyst/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/rfp-analyst/internal/adapters/driven/embedding/openai"
	anthropicsynth "github.com/custodia-labs/rfp-analyst/internal/adapters/driven/synthesis/anthropic"
	ollamasynth "github.com/custodia-labs/rfp-analyst/internal/adapters/driven/synthesis/ollama"
	openaisynth "github.com/custodia-labs/rfp-analyst/internal/adapters/driven/synthesis/openai"
	"github.com/custodia-labs/rfp-analyst/internal/adapters/driven/synthesis/ratelimit"
	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
	"github.com/custodia-labs/rfp-analyst/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult holds the AI collaborators built from settings.
type InitResult struct {
	Embedder    driven.Embedder
	Synthesizer driven.Synthesizer
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.Embedder != nil {
		r.Embedder.Close()
	}
	if r.Synthesizer != nil {
		r.Synthesizer.Close()
	}
}

// Init builds both collaborators, wrapping them with the embedding cache and
// the synthesis rate limiter. Neither is pinged; analysis reports an
// unreachable provider per task instead of failing at startup.
func Init(settings *domain.Settings) (*InitResult, error) {
	emb, err := CreateEmbedder(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	if settings.Embedding.CacheSize > 0 {
		cached, err := embedcache.New(emb, settings.Embedding.CacheSize)
		if err != nil {
			emb.Close()
			return nil, err
		}
		emb = cached
	}

	synth, err := CreateSynthesizer(&settings.Synthesis)
	if err != nil {
		emb.Close()
		return nil, err
	}
	if settings.Analysis.RateLimit > 0 {
		synth = ratelimit.New(synth, settings.Analysis.RateLimit, settings.Analysis.Workers)
	}

	logger.Debug("ai: embedder %s (%d dims), synthesizer %s",
		emb.ModelName(), emb.Dimensions(), synth.ModelName())
	return &InitResult{Embedder: emb, Synthesizer: synth}, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
// Returns nil if the provider is not configured.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbedder(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// ValidateSynthesisConfig validates a synthesis configuration by creating a service and pinging it.
// Returns nil if the provider is not configured.
func ValidateSynthesisConfig(settings *domain.SynthesisSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateSynthesizer(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSynthesisFailure, err)
	}
	return nil
}

// CreateEmbedder creates the embedder selected by settings.
func CreateEmbedder(settings *domain.EmbeddingSettings) (driven.Embedder, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no embedding settings", domain.ErrInvalidInput)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbedder(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbedder(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: domain.EmbeddingDimensions()[settings.Model],
		})

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use ollama or openai",
			domain.ErrInvalidInput)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %q", domain.ErrInvalidInput, settings.Provider)
	}
}

// CreateSynthesizer creates the synthesizer selected by settings.
func CreateSynthesizer(settings *domain.SynthesisSettings) (driven.Synthesizer, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no synthesis settings", domain.ErrInvalidInput)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamasynth.NewSynthesizer(ollamasynth.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaisynth.NewSynthesizer(openaisynth.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicsynth.NewSynthesizer(anthropicsynth.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported synthesis provider: %q", domain.ErrInvalidInput, settings.Provider)
	}
}
