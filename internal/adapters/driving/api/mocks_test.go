package api

import (
	"context"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driving"
)

type mockIngest struct {
	doc      *domain.Document
	err      error
	gotName  string
	gotBytes []byte
}

func (m *mockIngest) Ingest(_ context.Context, filename string, data []byte) (*domain.Document, error) {
	m.gotName, m.gotBytes = filename, data
	return m.doc, m.err
}

type mockDocuments struct {
	docs    []domain.Document
	chunks  []domain.Chunk
	deleted bool
	err     error

	gotHash, gotFilename string
}

func (m *mockDocuments) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocuments) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocuments) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockDocuments) Delete(_ context.Context, hash, filename string) (bool, error) {
	m.gotHash, m.gotFilename = hash, filename
	return m.deleted, m.err
}

type mockAnalysis struct {
	report  *domain.Report
	err     error
	gotID   string
	gotOpts driving.AnalyzeOptions
}

func (m *mockAnalysis) Analyze(_ context.Context, id string, opts driving.AnalyzeOptions) (*domain.Report, error) {
	m.gotID, m.gotOpts = id, opts
	return m.report, m.err
}

type mockRetrieval struct {
	passages []domain.Passage
	err      error
	gotQuery string
	gotOpts  domain.RetrieveOptions
}

func (m *mockRetrieval) Retrieve(_ context.Context, query string, opts domain.RetrieveOptions) ([]domain.Passage, error) {
	m.gotQuery, m.gotOpts = query, opts
	return m.passages, m.err
}
