package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/rfp-analyst/internal/adapters/driving/api"
	"github.com/custodia-labs/rfp-analyst/internal/adapters/driving/watcher"
)

var (
	serveAddr      string
	serveInbox     string
	serveMaxUpload int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the upload, document, search and analysis endpoints over HTTP.

Endpoints:
  POST   /api/upload                         multipart field "file"
  GET    /api/documents
  GET    /api/documents/{id}
  GET    /api/documents/{id}/chunks
  GET    /api/documents/{id}/analysis         ?kinds=risks,metadata&per_chunk=compliance
  GET    /api/documents/{id}/{section}        eligibility, requirements, contract-risks,
                                              submission-checklist, metadata, compliance
  DELETE /api/documents/{hash}/{filename}
  POST   /api/search                         {"query": "...", "top_k": 5}
  GET    /healthz

With --inbox, files dropped into the directory are ingested as well.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from settings)")
	serveCmd.Flags().StringVar(&serveInbox, "inbox", "", "directory to watch for new RFP files")
	serveCmd.Flags().Int64Var(&serveMaxUpload, "max-upload", api.DefaultMaxUploadBytes, "maximum upload size in bytes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	handler, err := api.NewHandler(api.Services{
		Ingest:    ingestService,
		Documents: documentService,
		Analysis:  analysisService,
		Retrieval: retrievalService,
	}, serveMaxUpload)
	if err != nil {
		return err
	}

	addr, err := resolveServeAddr()
	if err != nil {
		return err
	}

	var inbox *watcher.Watcher
	if serveInbox != "" {
		if inbox, err = watcher.New(ingestService, supportedExtensions); err != nil {
			return err
		}
	}

	server := api.NewServer(addr, handler)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return server.Run(ctx)
	})
	if inbox != nil {
		g.Go(func() error {
			return inbox.Run(ctx, serveInbox)
		})
		cmd.Printf("Watching %s for new RFPs\n", serveInbox)
	}

	cmd.Printf("API listening on %s\n", server.Addr())
	return g.Wait()
}

func resolveServeAddr() (string, error) {
	if serveAddr != "" {
		return serveAddr, nil
	}
	if settingsService == nil {
		return "", errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.Server.Addr, nil
}
