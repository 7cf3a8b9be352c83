package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir         = "data_dir"
	keyChunkStrategy   = "chunking.strategy"
	keyChunkSize       = "chunking.size"
	keyChunkOverlap    = "chunking.overlap"
	keyTopK            = "retrieval.top_k"
	keyMinScore        = "retrieval.min_score"
	keyWorkers         = "analysis.workers"
	keyTaskTimeout     = "analysis.task_timeout"
	keyRateLimit       = "analysis.rate_limit"
	keyProfile         = "analysis.profile"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedCacheSize  = "embedding.cache_size"
	keySynthProvider   = "synthesis.provider"
	keySynthModel      = "synthesis.model"
	keySynthBaseURL    = "synthesis.base_url"
	keySynthAPIKey     = "synthesis.api_key"
	keyIndexBackend    = "index.backend"
	keyIndexDSN        = "index.dsn"
	keyIndexDims       = "index.dimensions"
	keyBlobBackend     = "blob.backend"
	keyBlobDir         = "blob.dir"
	keyBlobBucket      = "blob.bucket"
	keyBlobRegion      = "blob.region"
	keyBlobEndpoint    = "blob.endpoint"
	keyServerAddr      = "server.addr"
	keyOpenAIAPIKey    = "openai.api_key"
	keyAnthropicAPIKey = "anthropic.api_key"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService resolves domain.Settings from the config store.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings. Unset or unrecognised values
// fall back to defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	embedProvider := s.getProvider(keyEmbedProvider, d.Embedding.Provider)
	embedModel := s.getString(keyEmbedModel, "")
	if embedModel == "" {
		embedModel = domain.DefaultEmbeddingModels()[embedProvider]
	}
	synthProvider := s.getProvider(keySynthProvider, d.Synthesis.Provider)
	synthModel := s.getString(keySynthModel, "")
	if synthModel == "" {
		synthModel = domain.DefaultLLMModels()[synthProvider]
	}

	dims := s.getInt(keyIndexDims, 0)
	if dims == 0 {
		if known, ok := domain.EmbeddingDimensions()[embedModel]; ok {
			dims = known
		} else {
			dims = d.Index.Dimensions
		}
	}

	timeout, err := s.getDuration(keyTaskTimeout, d.Analysis.TaskTimeout)
	if err != nil {
		return nil, err
	}

	settings := &domain.Settings{
		DataDir: s.configStore.GetString(keyDataDir),
		Chunking: domain.ChunkingSettings{
			Strategy: s.getChunkStrategy(d.Chunking.Strategy),
			Size:     s.getInt(keyChunkSize, d.Chunking.Size),
			Overlap:  s.getIntAllowZero(keyChunkOverlap, d.Chunking.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:     s.getInt(keyTopK, d.Retrieval.TopK),
			MinScore: s.getFloat(keyMinScore, d.Retrieval.MinScore),
		},
		Analysis: domain.AnalysisSettings{
			Workers:     s.getInt(keyWorkers, d.Analysis.Workers),
			TaskTimeout: timeout,
			RateLimit:   s.getFloat(keyRateLimit, d.Analysis.RateLimit),
			ProfilePath: s.configStore.GetString(keyProfile),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:  embedProvider,
			Model:     embedModel,
			BaseURL:   s.baseURL(keyEmbedBaseURL, embedProvider),
			APIKey:    s.apiKey(keyEmbedAPIKey, embedProvider),
			CacheSize: s.getIntAllowZero(keyEmbedCacheSize, d.Embedding.CacheSize),
		},
		Synthesis: domain.SynthesisSettings{
			Provider: synthProvider,
			Model:    synthModel,
			BaseURL:  s.baseURL(keySynthBaseURL, synthProvider),
			APIKey:   s.apiKey(keySynthAPIKey, synthProvider),
		},
		Index: domain.IndexSettings{
			Backend:    domain.IndexBackend(s.getString(keyIndexBackend, string(d.Index.Backend))),
			DSN:        s.configStore.GetString(keyIndexDSN),
			Dimensions: dims,
		},
		Blob: domain.BlobSettings{
			Backend:  domain.BlobBackend(s.getString(keyBlobBackend, string(d.Blob.Backend))),
			Dir:      s.configStore.GetString(keyBlobDir),
			Bucket:   s.configStore.GetString(keyBlobBucket),
			Region:   s.configStore.GetString(keyBlobRegion),
			Endpoint: s.configStore.GetString(keyBlobEndpoint),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, d.Server.Addr),
		},
	}

	return settings, nil
}

// Save persists application settings. Empty API keys are not written so
// keys supplied through the environment never land on disk.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key string
		val any
	}{
		{keyChunkStrategy, settings.Chunking.Strategy.String()},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyTopK, settings.Retrieval.TopK},
		{keyMinScore, settings.Retrieval.MinScore},
		{keyWorkers, settings.Analysis.Workers},
		{keyTaskTimeout, settings.Analysis.TaskTimeout.String()},
		{keyRateLimit, settings.Analysis.RateLimit},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedCacheSize, settings.Embedding.CacheSize},
		{keySynthProvider, settings.Synthesis.Provider.String()},
		{keySynthModel, settings.Synthesis.Model},
		{keySynthBaseURL, settings.Synthesis.BaseURL},
		{keyIndexBackend, string(settings.Index.Backend)},
		{keyIndexDims, settings.Index.Dimensions},
		{keyBlobBackend, string(settings.Blob.Backend)},
		{keyServerAddr, settings.Server.Addr},
	}
	optional := []struct {
		key string
		val string
	}{
		{keyDataDir, settings.DataDir},
		{keyProfile, settings.Analysis.ProfilePath},
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keySynthAPIKey, settings.Synthesis.APIKey},
		{keyIndexDSN, settings.Index.DSN},
		{keyBlobDir, settings.Blob.Dir},
		{keyBlobBucket, settings.Blob.Bucket},
		{keyBlobRegion, settings.Blob.Region},
		{keyBlobEndpoint, settings.Blob.Endpoint},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	for _, v := range optional {
		if v.val == "" {
			continue
		}
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" && s.envAPIKey(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	if provider == domain.AIProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	// Vectors from different models are not comparable; follow the model.
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Index.Dimensions = d
	}

	return s.Save(settings)
}

// SetSynthesisProvider configures the synthesis provider.
func (s *SettingsService) SetSynthesisProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid synthesis provider: %s", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" && s.envAPIKey(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Synthesis.Provider = provider
	if model != "" {
		settings.Synthesis.Model = model
	} else {
		settings.Synthesis.Model = domain.DefaultLLMModels()[provider]
	}

	if provider == domain.AIProviderOllama {
		if settings.Synthesis.BaseURL == "" {
			settings.Synthesis.BaseURL = defaultOllamaURL
		}
	} else {
		settings.Synthesis.BaseURL = ""
	}
	settings.Synthesis.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the resolved settings are consistent and that both
// providers are configured.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if !settings.Synthesis.IsConfigured() {
		return fmt.Errorf("%w: synthesis provider %q is not configured",
			domain.ErrInvalidInput, settings.Synthesis.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateSynthesisConfig validates the current synthesis configuration by pinging the provider.
func (s *SettingsService) ValidateSynthesisConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateSynthesis(&settings.Synthesis)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero distinguishes an explicit zero from an unset key.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

// getDuration accepts "90s" style strings or a bare number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal, nil
	}
	if str := s.configStore.GetString(key); str != "" {
		d, err := time.ParseDuration(str)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
		}
		return d, nil
	}
	if secs := s.configStore.GetInt(key); secs > 0 {
		return time.Duration(secs) * time.Second, nil
	}
	return defaultVal, nil
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getChunkStrategy(defaultVal domain.ChunkStrategy) domain.ChunkStrategy {
	strategy := domain.ChunkStrategy(s.configStore.GetString(keyChunkStrategy))
	if !strategy.IsValid() {
		return defaultVal
	}
	return strategy
}

// baseURL returns the configured endpoint, defaulting Ollama to localhost.
func (s *SettingsService) baseURL(key string, provider domain.AIProvider) string {
	if url := s.configStore.GetString(key); url != "" {
		return url
	}
	if provider == domain.AIProviderOllama {
		return defaultOllamaURL
	}
	return ""
}

// apiKey prefers the section's own key, then the provider-wide key
// (usually bound from OPENAI_API_KEY or ANTHROPIC_API_KEY).
func (s *SettingsService) apiKey(key string, provider domain.AIProvider) string {
	if k := s.configStore.GetString(key); k != "" {
		return k
	}
	return s.envAPIKey(provider)
}

func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.configStore.GetString(keyOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		return s.configStore.GetString(keyAnthropicAPIKey)
	default:
		return ""
	}
}
