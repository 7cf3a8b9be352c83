package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driving"
	"github.com/custodia-labs/rfp-analyst/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// previewRunes is how much leading text is kept on the registry record.
const previewRunes = 1000

// IngestService runs an upload through dedup, extraction, chunking,
// embedding and storage.
type IngestService struct {
	dedup      *Deduplicator
	extractors driven.ExtractorRegistry
	chunker    driven.Chunker
	embedder   driven.Embedder
	index      driven.VectorIndex
	blobs      driven.BlobStore
	docs       driven.DocumentStore
	now        func() time.Time
}

// NewIngestService creates an ingest service. All collaborators are required.
func NewIngestService(
	extractors driven.ExtractorRegistry,
	chunker driven.Chunker,
	embedder driven.Embedder,
	index driven.VectorIndex,
	blobs driven.BlobStore,
	docs driven.DocumentStore,
) *IngestService {
	return &IngestService{
		dedup:      NewDeduplicator(blobs, docs),
		extractors: extractors,
		chunker:    chunker,
		embedder:   embedder,
		index:      index,
		blobs:      blobs,
		docs:       docs,
		now:        time.Now,
	}
}

// Ingest hashes, extracts, chunks, embeds and registers a document.
// The duplicate check happens before any extraction work. A document
// whose pages are all blank is registered with zero chunks.
func (s *IngestService) Ingest(ctx context.Context, filename string, data []byte) (*domain.Document, error) {
	logger.Section("Ingest")

	filename = sanitizeFilename(filename)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, filename)
	}

	hash := s.dedup.Hash(data)
	logger.Debug("%s: sha256 %s (%d bytes)", filename, hash, len(data))

	exists, err := s.dedup.Exists(ctx, hash, filename)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Info("%s: already ingested as %s", filename, hash)
		return nil, domain.ErrDuplicateContent
	}

	pages, err := s.extractors.Extract(ctx, filename, data)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedType) || domain.IsDocumentReadError(err) {
			return nil, err
		}
		return nil, domain.NewDocumentReadError(filename, err)
	}

	doc := &domain.Document{
		ID:          hash,
		Filename:    filename,
		ContentType: s.extractors.ContentType(filename),
		Size:        int64(len(data)),
		PageCount:   len(pages),
		Status:      domain.DocumentStatusIndexed,
		CreatedAt:   s.now().UTC(),
	}
	doc.Preview, doc.WordCount = summarizeText(pages)

	chunks, err := s.chunker.Chunk(ctx, doc, pages)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", filename, err)
	}
	doc.ChunkCount = len(chunks)
	logger.Debug("%s: %d pages, %d chunks via %s", filename, len(pages), len(chunks), s.chunker.Name())

	if err := s.embedAndIndex(ctx, chunks); err != nil {
		return nil, err
	}

	key := BlobKey(hash, filename)
	location, err := s.blobs.Put(ctx, key, data, doc.ContentType)
	if err != nil {
		s.rollback(ctx, doc.ID, "")
		return nil, fmt.Errorf("store blob: %w", err)
	}
	doc.Location = location

	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		// A concurrent upload of the same bytes may win the insert.
		if errors.Is(err, domain.ErrDuplicateContent) {
			return nil, err
		}
		s.rollback(ctx, doc.ID, key)
		return nil, fmt.Errorf("register document: %w", err)
	}
	if err := s.docs.SaveChunks(ctx, chunks); err != nil {
		_ = s.docs.DeleteDocument(ctx, doc.ID)
		s.rollback(ctx, doc.ID, key)
		return nil, fmt.Errorf("save chunks: %w", err)
	}

	logger.Info("%s: ingested as %s (%d chunks)", filename, hash, len(chunks))
	return doc, nil
}

func (s *IngestService) embedAndIndex(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	done := logger.Timed("embed")
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	done()
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingUnavailable, len(vectors), len(chunks))
	}

	records := make([]driven.IndexRecord, len(chunks))
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
		records[i] = driven.IndexRecord{
			ID:         chunks[i].ID,
			DocumentID: chunks[i].DocumentID,
			Text:       chunks[i].Text,
			Page:       chunks[i].Page,
			Embedding:  vectors[i],
		}
	}

	if err := s.index.Index(ctx, records); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}
	return nil
}

// rollback removes partially stored state. Failures are logged only.
func (s *IngestService) rollback(ctx context.Context, documentID, blobKey string) {
	if _, err := s.index.DeleteDocument(ctx, documentID); err != nil {
		logger.Warn("rollback vectors for %s: %v", documentID, err)
	}
	if blobKey == "" {
		return
	}
	if _, err := s.blobs.Delete(ctx, blobKey); err != nil {
		logger.Warn("rollback blob %s: %v", blobKey, err)
	}
}

// summarizeText returns the leading text for previews and the word count.
func summarizeText(pages []domain.Page) (string, int) {
	var b strings.Builder
	words := 0
	for _, p := range pages {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		words += len(strings.Fields(text))
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
	}

	preview := []rune(b.String())
	if len(preview) > previewRunes {
		preview = preview[:previewRunes]
	}
	return string(preview), words
}
