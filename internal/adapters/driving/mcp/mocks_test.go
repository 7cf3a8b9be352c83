package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	passages []domain.Passage
	err      error
	gotOpts  domain.RetrieveOptions
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context,
	_ string,
	opts domain.RetrieveOptions,
) ([]domain.Passage, error) {
	m.gotOpts = opts
	return m.passages, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	chunks    []domain.Chunk
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.documents) == 0 {
		return nil, domain.ErrNotFound
	}
	return &m.documents[0], nil
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _, _ string) (bool, error) {
	return false, m.err
}

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	report  *domain.Report
	err     error
	gotOpts driving.AnalyzeOptions
}

func (m *mockAnalysisService) Analyze(
	_ context.Context,
	_ string,
	opts driving.AnalyzeOptions,
) (*domain.Report, error) {
	m.gotOpts = opts
	return m.report, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	doc     *domain.Document
	err     error
	gotName string
	gotData []byte
}

func (m *mockIngestService) Ingest(_ context.Context, filename string, data []byte) (*domain.Document, error) {
	m.gotName, m.gotData = filename, data
	return m.doc, m.err
}

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	s, err := NewServer(ports)
	require.NoError(t, err)
	return s
}
