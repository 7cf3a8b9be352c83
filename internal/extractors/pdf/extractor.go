// Package pdf extracts per-page text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
	"github.com/custodia-labs/rfp-analyst/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads PDF page text in pure Go.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Extract returns one Page per PDF page, numbered from 1. Pages without a
// dictionary are returned empty so numbering stays aligned with the source.
// Any page that fails to decode fails the whole document.
func (e *Extractor) Extract(ctx context.Context, data []byte) (pages []domain.Page, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = domain.NewDocumentReadError("", fmt.Errorf("pdf: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.NewDocumentReadError("", fmt.Errorf("pdf: open: %w", err))
	}

	total := reader.NumPage()
	logger.Debug("pdf: extracting %d pages", total)

	pages = make([]domain.Page, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			logger.Warn("pdf: page %d has no dictionary", i)
			pages = append(pages, domain.Page{Number: i})
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, domain.NewDocumentReadError("", fmt.Errorf("pdf: page %d: %w", i, err))
		}
		pages = append(pages, domain.Page{Number: i, Text: text})
	}

	return pages, nil
}
