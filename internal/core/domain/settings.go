package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// ChunkStrategy selects how extracted text is split.
type ChunkStrategy string

// Available chunking strategies.
const (
	// ChunkStrategyPage emits one chunk per non-empty page.
	ChunkStrategyPage ChunkStrategy = "page"

	// ChunkStrategyWindow emits fixed-size overlapping windows.
	ChunkStrategyWindow ChunkStrategy = "window"
)

// IsValid returns true if the strategy is recognised.
func (s ChunkStrategy) IsValid() bool {
	return s == ChunkStrategyPage || s == ChunkStrategyWindow
}

// String returns the string representation.
func (s ChunkStrategy) String() string {
	return string(s)
}

// AIProvider identifies an AI service provider for embeddings or synthesis.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// IndexBackend selects the similarity index implementation.
type IndexBackend string

// Available index backends.
const (
	IndexBackendSQLite   IndexBackend = "sqlite"
	IndexBackendPGVector IndexBackend = "pgvector"
	IndexBackendMemory   IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendPGVector, IndexBackendMemory:
		return true
	default:
		return false
	}
}

// BlobBackend selects where original uploads are kept.
type BlobBackend string

// Available blob backends.
const (
	BlobBackendFilesystem BlobBackend = "fs"
	BlobBackendS3         BlobBackend = "s3"
)

// IsValid returns true if the backend is recognised.
func (b BlobBackend) IsValid() bool {
	return b == BlobBackendFilesystem || b == BlobBackendS3
}

// ChunkingSettings controls the chunker.
type ChunkingSettings struct {
	Strategy ChunkStrategy
	Size     int
	Overlap  int
}

// Validate checks the window bounds. Page strategy ignores them.
func (c ChunkingSettings) Validate() error {
	if !c.Strategy.IsValid() {
		return fmt.Errorf("%w: unknown chunk strategy %q", ErrInvalidInput, c.Strategy)
	}
	if c.Strategy == ChunkStrategyPage {
		return nil
	}
	if c.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidInput)
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		return fmt.Errorf("%w: overlap must be in [0, size)", ErrInvalidInput)
	}
	return nil
}

// RetrievalSettings holds retrieval defaults.
type RetrievalSettings struct {
	TopK     int
	MinScore float64
}

// AnalysisSettings controls the orchestrator.
type AnalysisSettings struct {
	// Workers bounds how many tasks run at once.
	Workers int

	// TaskTimeout caps every external call a single task makes.
	TaskTimeout time.Duration

	// RateLimit is the synthesis request rate per second. Zero disables limiting.
	RateLimit float64

	// ProfilePath points at the company profile used by compliance checks.
	ProfilePath string
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// CacheSize is the number of memoised embeddings. Zero disables the cache.
	CacheSize int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// SynthesisSettings holds LLM provider configuration.
type SynthesisSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l SynthesisSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings configures the similarity index.
type IndexSettings struct {
	Backend IndexBackend

	// DSN is the postgres connection string for pgvector.
	DSN string

	// Dimensions is the embedding vector size.
	Dimensions int
}

// BlobSettings configures the blob store.
type BlobSettings struct {
	Backend BlobBackend

	// Dir is the root directory for the filesystem backend.
	Dir string

	// Bucket and Region address the S3 backend.
	Bucket string
	Region string

	// Endpoint overrides the S3 endpoint (MinIO, localstack).
	Endpoint string
}

// ServerSettings configures the HTTP boundary.
type ServerSettings struct {
	Addr string
}

// Settings holds all application settings.
type Settings struct {
	DataDir   string
	Chunking  ChunkingSettings
	Retrieval RetrievalSettings
	Analysis  AnalysisSettings
	Embedding EmbeddingSettings
	Synthesis SynthesisSettings
	Index     IndexSettings
	Blob      BlobSettings
	Server    ServerSettings
}

// DefaultSettings returns settings with sensible defaults. Providers default
// to a local Ollama so the pipeline works without API keys.
func DefaultSettings() Settings {
	return Settings{
		Chunking: ChunkingSettings{
			Strategy: ChunkStrategyPage,
			Size:     500,
			Overlap:  100,
		},
		Retrieval: RetrievalSettings{
			TopK:     5,
			MinScore: 0,
		},
		Analysis: AnalysisSettings{
			Workers:     4,
			TaskTimeout: 90 * time.Second,
			RateLimit:   2,
		},
		Embedding: EmbeddingSettings{
			Provider:  AIProviderOllama,
			Model:     DefaultEmbeddingModels()[AIProviderOllama],
			CacheSize: 1024,
		},
		Synthesis: SynthesisSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModels()[AIProviderOllama],
		},
		Index: IndexSettings{
			Backend:    IndexBackendSQLite,
			Dimensions: 384,
		},
		Blob: BlobSettings{
			Backend: BlobBackendFilesystem,
		},
		Server: ServerSettings{
			Addr: ":8080",
		},
	}
}

// Validate reports the first invalid setting.
func (s Settings) Validate() error {
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if s.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidInput)
	}
	if s.Analysis.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidInput)
	}
	if !s.Index.Backend.IsValid() {
		return fmt.Errorf("%w: unknown index backend %q", ErrInvalidInput, s.Index.Backend)
	}
	if !s.Blob.Backend.IsValid() {
		return fmt.Errorf("%w: unknown blob backend %q", ErrInvalidInput, s.Blob.Backend)
	}
	if s.Blob.Backend == BlobBackendS3 && s.Blob.Bucket == "" {
		return fmt.Errorf("%w: s3 blob backend needs a bucket", ErrInvalidInput)
	}
	if s.Index.Backend == IndexBackendPGVector && s.Index.DSN == "" {
		return fmt.Errorf("%w: pgvector index needs a dsn", ErrInvalidInput)
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support synthesis.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
