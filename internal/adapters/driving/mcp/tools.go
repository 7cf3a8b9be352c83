package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driving"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query      string  `json:"query" jsonschema:"what to look for in the RFP text"`
	TopK       int     `json:"top_k,omitempty" jsonschema:"maximum number of passages (default from settings)"`
	MinScore   float64 `json:"min_score,omitempty" jsonschema:"drop passages scoring below this similarity"`
	DocumentID string  `json:"document_id,omitempty" jsonschema:"restrict the search to one document"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput is one retrieved passage.
type PassageOutput struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Page       int     `json:"page,omitempty"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
}

// ListDocumentsInput is the (empty) input schema for list_documents.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for list_documents.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput summarises an ingested RFP.
type DocumentOutput struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Pages      int    `json:"pages"`
	Chunks     int    `json:"chunks"`
	Status     string `json:"status"`
	IngestedAt string `json:"ingested_at"`
}

// AnalyzeInput is the input schema for the analyze tool.
type AnalyzeInput struct {
	DocumentID string   `json:"document_id" jsonschema:"the document to analyse"`
	Kinds      []string `json:"kinds,omitempty" jsonschema:"analyses to run: eligibility, requirements, risks, checklist, metadata, compliance (default all)"`
	PerChunk   []string `json:"per_chunk,omitempty" jsonschema:"analyses to run chunk by chunk instead of by topic (default compliance)"`
}

// IngestFileInput is the input schema for the ingest_file tool.
type IngestFileInput struct {
	Path string `json:"path" jsonschema:"absolute path of a local RFP file"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the RFP passages most similar to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List ingested RFPs, newest first",
	}, s.handleListDocuments)

	if s.ports.Analysis != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "analyze",
			Description: "Run structured analyses over an ingested RFP and return the report as JSON",
		}, s.handleAnalyze)
	}

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_file",
			Description: "Ingest a local RFP file so it can be searched and analysed",
		}, s.handleIngestFile)
	}
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	passages, err := s.ports.Retrieval.Retrieve(ctx, input.Query, domain.RetrieveOptions{
		TopK:       input.TopK,
		MinScore:   input.MinScore,
		DocumentID: input.DocumentID,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Passages: make([]PassageOutput, len(passages)),
		Count:    len(passages),
	}
	for i, p := range passages {
		output.Passages[i] = PassageOutput{
			ChunkID:    p.ChunkID,
			DocumentID: p.DocumentID,
			Page:       p.Page,
			Score:      p.Score,
			Text:       p.Text,
		}
	}
	return nil, output, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = toDocumentOutput(&docs[i])
	}
	return nil, output, nil
}

// handleAnalyze returns the report as text content. Report slots render
// either a payload or {"error": ...}, which no single output schema covers.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, any, error) {
	opts := driving.DefaultAnalyzeOptions()
	var err error
	if len(input.Kinds) > 0 {
		if opts.Kinds, err = parseKinds(input.Kinds); err != nil {
			return nil, nil, err
		}
		opts.PerChunk = nil
	}
	if len(input.PerChunk) > 0 {
		if opts.PerChunk, err = parseKinds(input.PerChunk); err != nil {
			return nil, nil, err
		}
	}

	report, err := s.ports.Analysis.Analyze(ctx, input.DocumentID, opts)
	if err != nil {
		return nil, nil, err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshalling report: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func (s *Server) handleIngestFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestFileInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	if !filepath.IsAbs(input.Path) {
		return nil, DocumentOutput{}, fmt.Errorf("%w: path must be absolute", domain.ErrInvalidInput)
	}
	data, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, DocumentOutput{}, fmt.Errorf("reading %s: %w", input.Path, err)
	}

	doc, err := s.ports.Ingest.Ingest(ctx, filepath.Base(input.Path), data)
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, toDocumentOutput(doc), nil
}

func toDocumentOutput(d *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:         d.ID,
		Filename:   d.Filename,
		Pages:      d.PageCount,
		Chunks:     d.ChunkCount,
		Status:     string(d.Status),
		IngestedAt: d.CreatedAt.Format(time.RFC3339),
	}
}

func parseKinds(names []string) ([]domain.AnalysisKind, error) {
	kinds := make([]domain.AnalysisKind, 0, len(names))
	for _, n := range names {
		k, err := domain.ParseAnalysisKind(n)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
