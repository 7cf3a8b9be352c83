package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure chunking, retrieval, AI providers, and storage backends.

Settings live in ~/.rfp-analyst/config.toml. Environment variables (RFP_*,
OPENAI_API_KEY, ANTHROPIC_API_KEY, DATABASE_URL) override the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used for ingestion and search.`,
	RunE:  runSettingsEmbedding,
}

var settingsSynthesisCmd = &cobra.Command{
	Use:     "synthesis",
	Aliases: []string{"llm"},
	Short:   "Configure synthesis provider",
	Long:    `Configure the LLM that produces the analysis reports.`,
	RunE:    runSettingsSynthesis,
}

var settingsChunkingCmd = &cobra.Command{
	Use:   "chunking",
	Short: "Set the chunking strategy",
	Long: `Set how extracted text is split before embedding.

Strategies:
  page   - one chunk per non-empty page (default)
  window - fixed-size overlapping windows, measured in characters`,
	Args: cobra.NoArgs,
	RunE: runSettingsChunking,
}

var (
	chunkStrategy string
	chunkSize     int
	chunkOverlap  int
)

// settingsInput is where interactive prompts read from.
var settingsInput io.Reader = os.Stdin

func init() {
	settingsChunkingCmd.Flags().StringVar(&chunkStrategy, "strategy", "", "page or window")
	settingsChunkingCmd.Flags().IntVar(&chunkSize, "size", 0, "window size in characters")
	settingsChunkingCmd.Flags().IntVar(&chunkOverlap, "overlap", -1, "window overlap in characters")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsSynthesisCmd)
	settingsCmd.AddCommand(settingsChunkingCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Strategy: %s\n", settings.Chunking.Strategy)
	if settings.Chunking.Strategy == domain.ChunkStrategyWindow {
		cmd.Printf("  Size: %d\n", settings.Chunking.Size)
		cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	}
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Min score: %.2f\n", settings.Retrieval.MinScore)
	cmd.Println()

	cmd.Println("[Analysis]")
	cmd.Printf("  Workers: %d\n", settings.Analysis.Workers)
	cmd.Printf("  Task timeout: %s\n", settings.Analysis.TaskTimeout)
	if settings.Analysis.RateLimit > 0 {
		cmd.Printf("  Rate limit: %.1f req/s\n", settings.Analysis.RateLimit)
	} else {
		cmd.Printf("  Rate limit: off\n")
	}
	if settings.Analysis.ProfilePath != "" {
		cmd.Printf("  Company profile: %s\n", settings.Analysis.ProfilePath)
	}
	cmd.Println()

	printProvider(cmd, "Embedding", settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	printProvider(cmd, "Synthesis", settings.Synthesis.Provider, settings.Synthesis.Model,
		settings.Synthesis.BaseURL, settings.Synthesis.APIKey, settings.Synthesis.IsConfigured())

	cmd.Println("[Storage]")
	cmd.Printf("  Index: %s (%d dimensions)\n", settings.Index.Backend, settings.Index.Dimensions)
	switch settings.Blob.Backend {
	case domain.BlobBackendS3:
		cmd.Printf("  Blobs: s3://%s (%s)\n", settings.Blob.Bucket, settings.Blob.Region)
	default:
		cmd.Printf("  Blobs: %s\n", settings.Blob.Dir)
	}
	cmd.Printf("  Data dir: %s\n", settings.DataDir)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'rfp settings embedding' or 'rfp settings synthesis' to fix provider issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, title string, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("[%s]\n", title)
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(settingsInput)
	provider, model, apiKey, err := chooseProvider(cmd, reader, "Embedding",
		domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), model)
	cmd.Println("Documents embedded with another model must be re-ingested.")
	return nil
}

func runSettingsSynthesis(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(settingsInput)
	provider, model, apiKey, err := chooseProvider(cmd, reader, "Synthesis",
		domain.AllLLMProviders(), domain.DefaultLLMModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetSynthesisProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure synthesis provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateSynthesisConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("synthesis configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Synthesis provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func chooseProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	title string,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
) (domain.AIProvider, string, string, error) {
	cmd.Printf("Select %s Provider\n", title)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := defaults[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return "", "", "", errors.New("API key is required for this provider")
		}
	}
	return provider, model, apiKey, nil
}

func runSettingsChunking(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if chunkStrategy != "" {
		settings.Chunking.Strategy = domain.ChunkStrategy(chunkStrategy)
	}
	if chunkSize > 0 {
		settings.Chunking.Size = chunkSize
	}
	if chunkOverlap >= 0 {
		settings.Chunking.Overlap = chunkOverlap
	}
	if err := settings.Chunking.Validate(); err != nil {
		return err
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Chunking set to: %s\n", settings.Chunking.Strategy)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(reader *bufio.Reader) string {
	if f, ok := settingsInput.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
