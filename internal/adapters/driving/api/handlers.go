package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driving"
	"github.com/custodia-labs/rfp-analyst/internal/logger"
)

// DefaultMaxUploadBytes caps the size of an uploaded RFP.
const DefaultMaxUploadBytes = 64 << 20

// sectionKinds maps single-section routes to the analysis they run.
var sectionKinds = map[string]domain.AnalysisKind{
	"eligibility":          domain.AnalysisEligibility,
	"requirements":         domain.AnalysisRequirements,
	"contract-risks":       domain.AnalysisRisks,
	"submission-checklist": domain.AnalysisChecklist,
	"metadata":             domain.AnalysisMetadata,
	"compliance":           domain.AnalysisCompliance,
}

// Services are the driving ports the HTTP boundary calls.
type Services struct {
	Ingest    driving.IngestService
	Documents driving.DocumentService
	Analysis  driving.AnalysisService
	Retrieval driving.RetrievalService
}

// Validate ensures every port is set.
func (s Services) Validate() error {
	switch {
	case s.Ingest == nil:
		return errors.New("api: ingest service is required")
	case s.Documents == nil:
		return errors.New("api: document service is required")
	case s.Analysis == nil:
		return errors.New("api: analysis service is required")
	case s.Retrieval == nil:
		return errors.New("api: retrieval service is required")
	}
	return nil
}

// Handler implements the HTTP endpoints.
type Handler struct {
	svc            Services
	maxUploadBytes int64
}

// NewHandler creates a handler. maxUploadBytes <= 0 means DefaultMaxUploadBytes.
func NewHandler(svc Services, maxUploadBytes int64) (*Handler, error) {
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}, nil
}

// Health answers liveness probes.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Upload ingests the multipart "file" field. A body over maxUploadBytes is
// answered with 413.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUploadBytes {
		writeError(w, fmt.Errorf("%w: upload: %w", domain.ErrInvalidInput, &http.MaxBytesError{Limit: h.maxUploadBytes}))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, fmt.Errorf("%w: multipart field \"file\": %w", domain.ErrInvalidInput, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, fmt.Errorf("%w: read upload: %w", domain.ErrInvalidInput, err))
		return
	}

	doc, err := h.svc.Ingest.Ingest(r.Context(), header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newDocumentView(doc))
}

// ListDocuments returns every registered document.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.Documents.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]documentView, len(docs))
	for i := range docs {
		views[i] = newDocumentView(&docs[i])
	}
	writeJSON(w, http.StatusOK, views)
}

// GetDocument returns one document.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Documents.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newDocumentView(doc))
}

// GetChunks returns a document's chunks without their embeddings.
func (h *Handler) GetChunks(w http.ResponseWriter, r *http.Request) {
	chunks, err := h.svc.Documents.Chunks(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]chunkView, len(chunks))
	for i, c := range chunks {
		views[i] = chunkView{ID: c.ID, Sequence: c.Sequence, Page: c.Page, Text: c.Text}
	}
	writeJSON(w, http.StatusOK, views)
}

// DeleteDocument removes the upload stored under hash and filename.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deleted, err := h.svc.Documents.Delete(r.Context(), vars["hash"], vars["filename"])
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if !deleted {
		status = http.StatusNotFound
	}
	writeJSON(w, status, deleteResponse{Deleted: deleted})
}

// Analyze runs the full report. Query parameters "kinds" and "per_chunk"
// take comma-separated kind names; without them every kind runs and
// compliance is checked chunk by chunk.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	opts := driving.DefaultAnalyzeOptions()
	q := r.URL.Query()

	var err error
	if q.Has("kinds") {
		if opts.Kinds, err = parseKinds(q.Get("kinds")); err != nil {
			writeError(w, err)
			return
		}
		opts.PerChunk = nil
	}
	if q.Has("per_chunk") {
		if opts.PerChunk, err = parseKinds(q.Get("per_chunk")); err != nil {
			writeError(w, err)
			return
		}
	}

	report, err := h.svc.Analysis.Analyze(r.Context(), mux.Vars(r)["id"], opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Section runs and returns a single analysis.
func (h *Handler) Section(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind, ok := sectionKinds[vars["section"]]
	if !ok {
		writeError(w, fmt.Errorf("%w: unknown section %q", domain.ErrNotFound, vars["section"]))
		return
	}

	opts := driving.AnalyzeOptions{Kinds: []domain.AnalysisKind{kind}}
	if kind == domain.AnalysisCompliance {
		opts = driving.AnalyzeOptions{PerChunk: []domain.AnalysisKind{kind}}
	}

	report, err := h.svc.Analysis.Analyze(r.Context(), vars["id"], opts)
	if err != nil {
		writeError(w, err)
		return
	}
	section, err := report.Section(kind)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(section); err != nil {
		logger.Warn("api: write section: %v", err)
	}
}

// Search runs a similarity query.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: request body: %w", domain.ErrInvalidInput, err))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, fmt.Errorf("%w: query is required", domain.ErrInvalidInput))
		return
	}

	passages, err := h.svc.Retrieval.Retrieve(r.Context(), req.Query, domain.RetrieveOptions{
		TopK:       req.TopK,
		MinScore:   req.MinScore,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: passages, Count: len(passages)})
}

// parseKinds splits a comma-separated list of analysis kinds.
func parseKinds(s string) ([]domain.AnalysisKind, error) {
	var kinds []domain.AnalysisKind
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, err := domain.ParseAnalysisKind(part)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
