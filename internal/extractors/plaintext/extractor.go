// Package plaintext extracts text from plain text and Markdown files.
package plaintext

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles UTF-8 text files.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".txt", ".text", ".md", ".markdown"}
}

// Extract splits the text into pages on form feeds.
func (e *Extractor) Extract(_ context.Context, data []byte) ([]domain.Page, error) {
	if !utf8.Valid(data) {
		return nil, domain.NewDocumentReadError("", errInvalidUTF8)
	}
	return SplitPages(string(data)), nil
}

var errInvalidUTF8 = errors.New("text is not valid UTF-8")

// SplitPages splits text on form feed characters, the page separator
// emitted by most text converters. Text without form feeds is a single
// page with an unknown page number.
func SplitPages(text string) []domain.Page {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\f")
	if len(parts) == 1 {
		return []domain.Page{{Number: 0, Text: text}}
	}
	pages := make([]domain.Page, len(parts))
	for i, part := range parts {
		pages[i] = domain.Page{Number: i + 1, Text: part}
	}
	return pages
}
