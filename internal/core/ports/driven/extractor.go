package driven

import (
	"context"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

// Extractor turns raw document bytes into per-page text.
// Each extractor handles specific file extensions (e.g., .pdf, .docx).
type Extractor interface {
	// SupportedExtensions returns lowercase extensions including the dot.
	SupportedExtensions() []string

	// Extract returns the document's pages in order. Pages may be empty.
	// Unreadable input yields a *domain.DocumentReadError.
	Extract(ctx context.Context, data []byte) ([]domain.Page, error)
}

// ExtractorRegistry selects the extractor for a filename.
type ExtractorRegistry interface {
	// Extract dispatches on the filename's extension.
	// Unknown extensions yield domain.ErrUnsupportedType.
	Extract(ctx context.Context, filename string, data []byte) ([]domain.Page, error)

	// Register adds an extractor to the registry.
	Register(extractor Extractor)

	// SupportedExtensions returns all extensions that can be extracted.
	SupportedExtensions() []string

	// ContentType maps a filename to the MIME type stored with the document.
	ContentType(filename string) string
}
