package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driving"
)

var testIngestedAt = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func testDocuments() []domain.Document {
	return []domain.Document{
		{
			ID:          "doc-1",
			Filename:    "bridge-repair.pdf",
			ContentType: "application/pdf",
			Size:        2048,
			PageCount:   3,
			ChunkCount:  2,
			WordCount:   19,
			Preview:     "Bidders must hold ISO certification",
			Location:    "file:///data/rfps/doc-1-bridge-repair.pdf",
			Status:      domain.DocumentStatusIndexed,
			CreatedAt:   testIngestedAt,
		},
	}
}

// mockIngestService records ingested files.
type mockIngestService struct {
	names []string
	err   error
}

func (m *mockIngestService) Ingest(_ context.Context, filename string, data []byte) (*domain.Document, error) {
	m.names = append(m.names, filename)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Document{
		ID:         "hash-" + filename,
		Filename:   filename,
		Size:       int64(len(data)),
		PageCount:  1,
		ChunkCount: 1,
		Status:     domain.DocumentStatusIndexed,
	}, nil
}

// mockDocumentService serves testDocuments.
type mockDocumentService struct {
	docs          []domain.Document
	deleted       bool
	err           error
	deleteHash    string
	deleteName    string
	chunksRequest string
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Get(_ context.Context, documentID string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == documentID {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Chunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	m.chunksRequest = documentID
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Chunk{
		{ID: documentID + "_chunk_0", DocumentID: documentID, Sequence: 0, Page: 1, Text: "Eligibility criteria"},
		{ID: documentID + "_chunk_1", DocumentID: documentID, Sequence: 1, Text: "Penalty clause"},
	}, nil
}

func (m *mockDocumentService) Delete(_ context.Context, hash, filename string) (bool, error) {
	m.deleteHash, m.deleteName = hash, filename
	return m.deleted, m.err
}

// mockRetrievalService returns a fixed passage.
type mockRetrievalService struct {
	passages []domain.Passage
	err      error
	gotQuery string
	gotOpts  domain.RetrieveOptions
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query string, opts domain.RetrieveOptions) ([]domain.Passage, error) {
	m.gotQuery, m.gotOpts = query, opts
	return m.passages, m.err
}

// mockAnalysisService returns a report with metadata filled in.
type mockAnalysisService struct {
	err     error
	gotOpts driving.AnalyzeOptions
}

func (m *mockAnalysisService) Analyze(_ context.Context, documentID string, opts driving.AnalyzeOptions) (*domain.Report, error) {
	m.gotOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Report{
		RunID:      "run-1",
		DocumentID: documentID,
		Metadata:   domain.Filled(domain.RFPMetadata{Title: "Bridge Repair", Agency: "DOT"}),
		Risks:      domain.Failed[domain.RiskList](domain.NoRelevantContext(domain.AnalysisRisks)),
		Tasks: []domain.TaskSummary{
			{ID: "metadata", Kind: domain.AnalysisMetadata, OK: true},
			{ID: "risks", Kind: domain.AnalysisRisks, OK: false},
		},
	}, nil
}

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings      domain.Settings
	saved         *domain.Settings
	embedProvider domain.AIProvider
	embedModel    string
	embedKey      string
	validateErr   error
}

func newMockSettingsService() *mockSettingsService {
	s := domain.DefaultSettings()
	s.DataDir = "/tmp/rfp"
	s.Blob.Dir = "/tmp/rfp/blobs"
	return &mockSettingsService{settings: s}
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.Settings) error {
	m.saved = settings
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embedProvider, m.embedModel, m.embedKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) SetSynthesisProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Synthesis = domain.SynthesisSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.Settings { return domain.DefaultSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateSynthesisConfig() error { return nil }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ingest    *mockIngestService
	documents *mockDocumentService
	retrieval *mockRetrievalService
	analysis  *mockAnalysisService
	settings  *mockSettingsService
}

var mocks testServices

// setupTestServices installs fresh mocks and returns a cleanup func that
// restores the previous services and resets global flags.
func setupTestServices() func() {
	prev := Services{
		Ingest:     ingestService,
		Documents:  documentService,
		Retrieval:  retrievalService,
		Analysis:   analysisService,
		Settings:   settingsService,
		Extensions: supportedExtensions,
	}

	mocks = testServices{
		ingest:    &mockIngestService{},
		documents: &mockDocumentService{docs: testDocuments(), deleted: true},
		retrieval: &mockRetrievalService{passages: []domain.Passage{
			{ChunkID: "doc-1_chunk_0", DocumentID: "doc-1", Page: 1, Score: 0.87, Text: "Bidders must hold ISO certification."},
		}},
		analysis: &mockAnalysisService{},
		settings: newMockSettingsService(),
	}
	SetServices(Services{
		Ingest:     mocks.ingest,
		Documents:  mocks.documents,
		Retrieval:  mocks.retrieval,
		Analysis:   mocks.analysis,
		Settings:   mocks.settings,
		Extensions: []string{".pdf", ".txt"},
	})

	return func() {
		SetServices(prev)
		jsonOutput = false
		verbose = false
		searchTopK, searchMinScore, searchDocumentID = 0, 0, ""
		analyzeKinds, analyzePerChunk = nil, nil
		chunkStrategy, chunkSize, chunkOverlap = "", 0, -1
		serveAddr, serveInbox = "", ""
	}
}
