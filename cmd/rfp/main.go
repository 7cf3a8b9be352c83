// Command rfp ingests, searches and analyses requests for proposals.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/rfp-analyst/internal/adapters/driven/ai"
	"github.com/custodia-labs/rfp-analyst/internal/adapters/driven/blob/filesystem"
	"github.com/custodia-labs/rfp-analyst/internal/adapters/driven/blob/s3"
	"github.com/custodia-labs/rfp-analyst/internal/adapters/driven/config/file"
	"github.com/custodia-labs/rfp-analyst/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rfp-analyst/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/rfp-analyst/internal/adapters/driven/vector/pgvector"
	"github.com/custodia-labs/rfp-analyst/internal/adapters/driving/cli"
	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
	"github.com/custodia-labs/rfp-analyst/internal/core/services"
	"github.com/custodia-labs/rfp-analyst/internal/extractors"
	"github.com/custodia-labs/rfp-analyst/internal/logger"
	"github.com/custodia-labs/rfp-analyst/internal/postprocessors"
)

// version is set at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	app, err := wire(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	defer app.close()

	cli.SetVersion(version)
	cli.SetServices(app.services)
	return cli.Execute(ctx)
}

// app owns everything that must be released on exit.
type app struct {
	services cli.Services
	closers  []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// wire builds the service graph from configuration.
func wire(ctx context.Context) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	if err := file.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	if n := configStore.ApplyEnv(os.LookupEnv); n > 0 {
		logger.Debug("config: %d keys from environment", n)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if settings.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		settings.DataDir = filepath.Join(home, ".rfp-analyst", "data")
	}

	aiResult, err := ai.Init(settings)
	if err != nil {
		return nil, err
	}
	a.onClose(aiResult.Close)

	docs, index, err := openStorage(ctx, a, settings)
	if err != nil {
		return nil, err
	}
	blobs, err := openBlobs(ctx, settings)
	if err != nil {
		return nil, err
	}

	registry := extractors.NewDefaultRegistry()
	chunker, err := postprocessors.NewChunker(settings.Chunking)
	if err != nil {
		return nil, err
	}

	retriever := services.NewRetriever(aiResult.Embedder, index, settings.Retrieval.TopK)
	orchestrator := services.NewOrchestrator(settings.Analysis.Workers, settings.Analysis.TaskTimeout)
	analysis := services.NewAnalysisService(docs, retriever, aiResult.Synthesizer, orchestrator, settings.Retrieval)

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return nil, err
	}
	analysis.SetPromptStore(prompts)

	profile, err := file.NewProfileStore(settings.Analysis.ProfilePath)
	if err != nil {
		return nil, err
	}
	analysis.SetProfileStore(profile)

	a.services = cli.Services{
		Ingest:     services.NewIngestService(registry, chunker, aiResult.Embedder, index, blobs, docs),
		Documents:  services.NewDocumentService(docs, index, blobs),
		Retrieval:  retriever,
		Analysis:   analysis,
		Settings:   settingsService,
		Extensions: registry.SupportedExtensions(),
	}
	return a, nil
}

// openStorage returns the document registry and the similarity index.
// The registry lives in SQLite unless everything is in memory.
func openStorage(ctx context.Context, a *app, settings *domain.Settings) (driven.DocumentStore, driven.VectorIndex, error) {
	if settings.Index.Backend == domain.IndexBackendMemory {
		logger.Warn("storage: in-memory backend, nothing is persisted")
		return memory.NewDocumentStore(), memory.NewVectorIndex(), nil
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return nil, nil, err
	}
	a.onClose(func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing sqlite: %v", err)
		}
	})
	logger.Debug("storage: sqlite at %s", store.Path())

	if settings.Index.Backend != domain.IndexBackendPGVector {
		return store.DocumentStore(), store.VectorIndex(), nil
	}

	index, err := pgvector.New(ctx, pgvector.Config{
		DSN:        settings.Index.DSN,
		Dimensions: settings.Index.Dimensions,
	})
	if err != nil {
		return nil, nil, err
	}
	a.onClose(func() {
		if err := index.Close(); err != nil {
			logger.Warn("closing pgvector: %v", err)
		}
	})
	return store.DocumentStore(), index, nil
}

func openBlobs(ctx context.Context, settings *domain.Settings) (driven.BlobStore, error) {
	if settings.Blob.Backend == domain.BlobBackendS3 {
		return s3.New(ctx, s3.Config{
			Bucket:   settings.Blob.Bucket,
			Region:   settings.Blob.Region,
			Endpoint: settings.Blob.Endpoint,
		})
	}

	dir := settings.Blob.Dir
	if dir == "" {
		dir = filepath.Join(settings.DataDir, "blobs")
	}
	return filesystem.New(dir)
}
