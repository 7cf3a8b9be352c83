package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

type fixture struct {
	ingest    *mockIngest
	documents *mockDocuments
	analysis  *mockAnalysis
	retrieval *mockRetrieval
	server    *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ingest:    &mockIngest{},
		documents: &mockDocuments{},
		analysis:  &mockAnalysis{},
		retrieval: &mockRetrieval{},
	}
	h, err := NewHandler(Services{
		Ingest:    f.ingest,
		Documents: f.documents,
		Analysis:  f.analysis,
		Retrieval: f.retrieval,
	}, 1<<20)
	require.NoError(t, err)

	f.server = httptest.NewServer(NewMiddleware(NewRouter(h)))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body []byte, contentType string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, f.server.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func multipartBody(t *testing.T, field, filename string, data []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestNewHandler_RequiresServices(t *testing.T) {
	_, err := NewHandler(Services{}, 0)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestUpload(t *testing.T) {
	f := newFixture(t)
	f.ingest.doc = &domain.Document{ID: "abc", Filename: "tender.pdf", ChunkCount: 2, Status: domain.DocumentStatusIndexed}

	body, ct := multipartBody(t, "file", "tender.pdf", []byte("%PDF"))
	resp, out := f.do(t, http.MethodPost, "/api/upload", body, ct)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "tender.pdf", f.ingest.gotName)
	assert.Equal(t, []byte("%PDF"), f.ingest.gotBytes)

	var view map[string]any
	require.NoError(t, json.Unmarshal(out, &view))
	assert.Equal(t, "abc", view["id"])
	assert.Equal(t, float64(2), view["chunk_count"])
	assert.Equal(t, "indexed", view["status"])
}

func TestUpload_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"duplicate", domain.ErrDuplicateContent, http.StatusConflict, "this RFP has already been uploaded"},
		{"unsupported", fmt.Errorf("%w: .xls", domain.ErrUnsupportedType), http.StatusUnsupportedMediaType, ".xls"},
		{"unreadable", domain.NewDocumentReadError("x.pdf", errors.New("corrupt")), http.StatusUnprocessableEntity, "corrupt"},
		{"embedder down", fmt.Errorf("%w: refused", domain.ErrEmbeddingUnavailable), http.StatusServiceUnavailable, "refused"},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.ingest.err = tt.err

			body, ct := multipartBody(t, "file", "x.pdf", []byte("data"))
			resp, out := f.do(t, http.MethodPost, "/api/upload", body, ct)

			assert.Equal(t, tt.status, resp.StatusCode)
			var e errorBody
			require.NoError(t, json.Unmarshal(out, &e))
			assert.Contains(t, e.Error, tt.msg)
		})
	}
}

func TestUpload_MissingFile(t *testing.T) {
	f := newFixture(t)

	body, ct := multipartBody(t, "document", "x.pdf", []byte("data"))
	resp, _ := f.do(t, http.MethodPost, "/api/upload", body, ct)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.ingest.gotName)
}

func TestListAndGetDocuments(t *testing.T) {
	f := newFixture(t)
	f.documents.docs = []domain.Document{{ID: "a", Filename: "a.pdf"}, {ID: "b", Filename: "b.pdf"}}

	resp, out := f.do(t, http.MethodGet, "/api/documents", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []documentView
	require.NoError(t, json.Unmarshal(out, &list))
	assert.Len(t, list, 2)

	resp, _ = f.do(t, http.MethodGet, "/api/documents/b", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/documents/zzz", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetChunks(t *testing.T) {
	f := newFixture(t)
	f.documents.chunks = []domain.Chunk{{ID: "a_chunk_0", Page: 1, Text: "hello", Embedding: []float32{1, 2}}}

	resp, out := f.do(t, http.MethodGet, "/api/documents/a/chunks", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"id":"a_chunk_0","sequence":0,"page":1,"text":"hello"}]`, string(out))
}

func TestDeleteDocument(t *testing.T) {
	f := newFixture(t)
	f.documents.deleted = true

	resp, out := f.do(t, http.MethodDelete, "/api/documents/abc/tender.pdf", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"deleted":true}`, string(out))
	assert.Equal(t, "abc", f.documents.gotHash)
	assert.Equal(t, "tender.pdf", f.documents.gotFilename)

	f.documents.deleted = false
	resp, _ = f.do(t, http.MethodDelete, "/api/documents/abc/tender.pdf", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnalyze(t *testing.T) {
	f := newFixture(t)
	f.analysis.report = &domain.Report{
		RunID:      "run-1",
		DocumentID: "doc",
		Metadata:   domain.Filled(domain.RFPMetadata{Title: "Bridge"}),
		Risks:      domain.Failed[domain.RiskList](domain.NoRelevantContext(domain.AnalysisRisks)),
	}

	resp, out := f.do(t, http.MethodGet, "/api/documents/doc/analysis", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &m))
	assert.JSONEq(t, `{"error":"No relevant documents found for risks analysis"}`, string(m["risks"]))
	assert.JSONEq(t, `{"error":"analysis not run"}`, string(m["checklist"]))
	assert.Equal(t, []domain.AnalysisKind{domain.AnalysisCompliance}, f.analysis.gotOpts.PerChunk)
	assert.Empty(t, f.analysis.gotOpts.Kinds)
}

func TestAnalyze_KindsQuery(t *testing.T) {
	f := newFixture(t)
	f.analysis.report = &domain.Report{}

	resp, _ := f.do(t, http.MethodGet, "/api/documents/doc/analysis?kinds=risks,metadata", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []domain.AnalysisKind{domain.AnalysisRisks, domain.AnalysisMetadata}, f.analysis.gotOpts.Kinds)
	assert.Empty(t, f.analysis.gotOpts.PerChunk)

	resp, _ = f.do(t, http.MethodGet, "/api/documents/doc/analysis?kinds=pricing", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyze_UnknownDocument(t *testing.T) {
	f := newFixture(t)
	f.analysis.err = domain.ErrNotFound

	resp, _ := f.do(t, http.MethodGet, "/api/documents/nope/analysis", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSection(t *testing.T) {
	f := newFixture(t)
	f.analysis.report = &domain.Report{
		Risks: domain.Filled(domain.RiskList{Risks: []domain.Risk{{ID: 1, Clause: "7", Risk: "Penalty", Severity: "high"}}}),
	}

	resp, out := f.do(t, http.MethodGet, "/api/documents/doc/contract-risks", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(out), `"Penalty"`)
	assert.Equal(t, []domain.AnalysisKind{domain.AnalysisRisks}, f.analysis.gotOpts.Kinds)

	resp, _ = f.do(t, http.MethodGet, "/api/documents/doc/compliance", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []domain.AnalysisKind{domain.AnalysisCompliance}, f.analysis.gotOpts.PerChunk)

	resp, _ = f.do(t, http.MethodGet, "/api/documents/doc/pricing", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	f.retrieval.passages = []domain.Passage{{ChunkID: "a_chunk_0", DocumentID: "a", Text: "penalty", Page: 3, Score: 0.8}}

	resp, out := f.do(t, http.MethodPost, "/api/search",
		[]byte(`{"query":"late penalties","top_k":3,"min_score":0.5,"document_id":"a"}`), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "late penalties", f.retrieval.gotQuery)
	assert.Equal(t, domain.RetrieveOptions{TopK: 3, MinScore: 0.5, DocumentID: "a"}, f.retrieval.gotOpts)

	var sr searchResponse
	require.NoError(t, json.Unmarshal(out, &sr))
	assert.Equal(t, 1, sr.Count)
	assert.Equal(t, 3, sr.Results[0].Page)
}

func TestSearch_BadRequests(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{`{"query":""}`, `{"query":"x","limit":3}`, `not json`} {
		t.Run(strings.ReplaceAll(body, `"`, ""), func(t *testing.T) {
			resp, _ := f.do(t, http.MethodPost, "/api/search", []byte(body), "application/json")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestUpload_TooLarge(t *testing.T) {
	ingest := &mockIngest{}
	h, err := NewHandler(Services{
		Ingest:    ingest,
		Documents: &mockDocuments{},
		Analysis:  &mockAnalysis{},
		Retrieval: &mockRetrieval{},
	}, 64)
	require.NoError(t, err)
	router := NewRouter(h)

	body, ct := multipartBody(t, "file", "tender.pdf", bytes.Repeat([]byte("x"), 256))

	t.Run("declared length", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/upload", bytes.NewReader(body))
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("streamed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/upload", bytes.NewReader(body))
		req.Header.Set("Content-Type", ct)
		req.ContentLength = -1
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	assert.Empty(t, ingest.gotName)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(fmt.Errorf("wrap: %w", domain.ErrNotFound)))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrInvalidInput))
	assert.Equal(t, http.StatusRequestEntityTooLarge,
		statusFor(fmt.Errorf("%w: read upload: %w", domain.ErrInvalidInput, &http.MaxBytesError{Limit: 64})))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
