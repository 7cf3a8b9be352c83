// Package mcp provides an MCP (Model Context Protocol) server adapter for
// the RFP analyst. It lets AI assistants search ingested RFPs, list them
// and run structured analyses.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")
