// Package docx extracts text from word processor documents via docconv.
//
// DOCX and ODT are converted in pure Go. DOC and RTF need the wvText and
// unrtf tools on PATH; without them extraction fails with a read error.
package docx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv/v2"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
	"github.com/custodia-labs/rfp-analyst/internal/extractors/plaintext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// mimeTypes maps supported extensions to the MIME type docconv dispatches on.
var mimeTypes = map[string]string{
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".odt":  "application/vnd.oasis.opendocument.text",
	".doc":  "application/msword",
	".rtf":  "application/rtf",
}

// Extractor handles one word processor format.
type Extractor struct {
	ext string
}

// New creates a DOCX extractor.
func New() *Extractor {
	return &Extractor{ext: ".docx"}
}

// NewFor creates an extractor for another supported extension.
func NewFor(ext string) (*Extractor, error) {
	ext = strings.ToLower(ext)
	if _, ok := mimeTypes[ext]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, ext)
	}
	return &Extractor{ext: ext}, nil
}

// Extensions lists every extension NewFor accepts.
func Extensions() []string {
	return []string{".docx", ".odt", ".doc", ".rtf"}
}

// SupportedExtensions returns the extension this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{e.ext}
}

// Extract converts the document to text. Word documents carry no reliable
// page boundaries, so the text is split only on explicit form feeds.
func (e *Extractor) Extract(_ context.Context, data []byte) ([]domain.Page, error) {
	if len(data) == 0 {
		return nil, domain.NewDocumentReadError("", fmt.Errorf("docx: empty input"))
	}

	res, err := docconv.Convert(bytes.NewReader(data), mimeTypes[e.ext], false)
	if err != nil {
		return nil, domain.NewDocumentReadError("", fmt.Errorf("docx: convert %s: %w", e.ext, err))
	}
	if res.Error != "" {
		return nil, domain.NewDocumentReadError("", fmt.Errorf("docx: convert %s: %s", e.ext, res.Error))
	}

	return plaintext.SplitPages(res.Body), nil
}
