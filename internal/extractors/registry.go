package extractors

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
	"github.com/custodia-labs/rfp-analyst/internal/extractors/docx"
	"github.com/custodia-labs/rfp-analyst/internal/extractors/html"
	"github.com/custodia-labs/rfp-analyst/internal/extractors/pdf"
	"github.com/custodia-labs/rfp-analyst/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches extraction on file extension.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]driven.Extractor),
	}
}

// NewDefaultRegistry creates a registry with every built-in extractor.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	for _, ext := range docx.Extensions() {
		if e, err := docx.NewFor(ext); err == nil {
			r.Register(e)
		}
	}
	r.Register(html.New())
	r.Register(plaintext.New())
	return r
}

// Register adds an extractor. Later registrations win for a shared extension.
func (r *Registry) Register(extractor driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range extractor.SupportedExtensions() {
		r.extractors[strings.ToLower(ext)] = extractor
	}
}

// SupportedExtensions returns all extensions that can be extracted, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether filename has a registered extension.
func (r *Registry) Supports(filename string) bool {
	_, ok := r.lookup(filename)
	return ok
}

// Extract dispatches on the filename's extension.
func (r *Registry) Extract(ctx context.Context, filename string, data []byte) ([]domain.Page, error) {
	extractor, ok := r.lookup(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Ext(filename))
	}
	pages, err := extractor.Extract(ctx, data)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		var readErr *domain.DocumentReadError
		if errors.As(err, &readErr) {
			if readErr.Filename == "" {
				readErr.Filename = filepath.Base(filename)
			}
			return nil, err
		}
		return nil, domain.NewDocumentReadError(filepath.Base(filename), err)
	}
	return pages, nil
}

func (r *Registry) lookup(filename string) (driven.Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	extractor, ok := r.extractors[strings.ToLower(filepath.Ext(filename))]
	return extractor, ok
}

// ContentType maps a filename to the MIME type stored with the document.
func (r *Registry) ContentType(filename string) string {
	return ContentType(filename)
}

// ContentType maps a filename to a MIME type without consulting the host's
// mime.types, so .docx and friends resolve the same everywhere.
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".doc":
		return "application/msword"
	case ".odt":
		return "application/vnd.oasis.opendocument.text"
	case ".rtf":
		return "application/rtf"
	case ".html", ".htm":
		return "text/html"
	case ".md":
		return "text/markdown"
	default:
		return "text/plain"
	}
}
