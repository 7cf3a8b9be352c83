package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid text URI", uri: "rfp://documents/abc123/text", expected: "abc123"},
		{name: "missing suffix", uri: "rfp://documents/abc123", expected: ""},
		{name: "wrong scheme", uri: "file://documents/abc123/text", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDocumentID(tt.uri))
		})
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists documents", func(t *testing.T) {
		docs := &mockDocumentService{documents: []domain.Document{
			{ID: "doc-1", Filename: "bridge.pdf"},
			{ID: "doc-2", Filename: "roads.docx"},
		}}
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Document: docs})

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("rfp://documents"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "bridge.pdf")
		assert.Contains(t, result.Contents[0].Text, "doc-2")
	})

	t.Run("empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{
			Retrieval: &mockRetrievalService{},
			Document:  &mockDocumentService{documents: []domain.Document{}},
		})

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("rfp://documents"))
		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("list failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{
			Retrieval: &mockRetrievalService{},
			Document:  &mockDocumentService{err: errors.New("database is locked")},
		})

		_, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("rfp://documents"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}

func TestServer_handleDocumentTextResource(t *testing.T) {
	ctx := context.Background()

	t.Run("joins chunks with page markers", func(t *testing.T) {
		docs := &mockDocumentService{chunks: []domain.Chunk{
			{Sequence: 0, Page: 1, Text: "Eligibility"},
			{Sequence: 1, Page: 3, Text: "Penalties"},
		}}
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Document: docs})

		result, err := server.handleDocumentTextResource(ctx, makeReadResourceRequest("rfp://documents/abc/text"))
		require.NoError(t, err)
		assert.Equal(t, "[page 1]\nEligibility\n\n[page 3]\nPenalties", result.Contents[0].Text)
	})

	t.Run("invalid URI", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}, Document: &mockDocumentService{}})

		_, err := server.handleDocumentTextResource(ctx, makeReadResourceRequest("rfp://nope"))
		require.Error(t, err)
	})

	t.Run("unknown document", func(t *testing.T) {
		server := newTestServer(t, &Ports{
			Retrieval: &mockRetrievalService{},
			Document:  &mockDocumentService{err: domain.ErrNotFound},
		})

		_, err := server.handleDocumentTextResource(ctx, makeReadResourceRequest("rfp://documents/abc/text"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
