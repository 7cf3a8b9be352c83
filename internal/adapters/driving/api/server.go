package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"

	"github.com/custodia-labs/rfp-analyst/internal/logger"
)

// shutdownTimeout bounds how long in-flight requests get on shutdown.
const shutdownTimeout = 10 * time.Second

// NewRouter registers every endpoint on a new router.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/upload", h.Upload).Methods(http.MethodPost)
	api.HandleFunc("/search", h.Search).Methods(http.MethodPost)
	api.HandleFunc("/documents", h.ListDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents/{hash}/{filename}", h.DeleteDocument).Methods(http.MethodDelete)
	api.HandleFunc("/documents/{id}", h.GetDocument).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/chunks", h.GetChunks).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/analysis", h.Analyze).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/{section}", h.Section).Methods(http.MethodGet)
	return r
}

// NewMiddleware wraps the router with panic recovery and access logging.
// Access logs go to the verbose log.
func NewMiddleware(r http.Handler) *negroni.Negroni {
	n := negroni.New()

	recovery := negroni.NewRecovery()
	recovery.PrintStack = false
	recovery.Logger = log.New(logger.Writer(), "[api] ", 0)
	n.Use(recovery)

	access := negroni.NewLogger()
	access.ALogger = log.New(logger.Writer(), "[api] ", 0)
	n.Use(access)

	n.UseHandler(r)
	return n
}

// Server is the HTTP boundary of the pipeline.
type Server struct {
	srv *http.Server
}

// NewServer creates a server listening on addr.
func NewServer(addr string, h *Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           NewMiddleware(NewRouter(h)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
