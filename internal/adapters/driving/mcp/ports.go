package mcp

import (
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval answers similarity queries.
	Retrieval driving.RetrievalService

	// Document lists and inspects ingested RFPs.
	Document driving.DocumentService

	// Analysis runs structured analyses. Optional; without it the
	// analyze tool is not registered.
	Analysis driving.AnalysisService

	// Ingest accepts local files. Optional; without it the ingest_file
	// tool is not registered.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
