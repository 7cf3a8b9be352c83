package api

import (
	"time"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

type documentView struct {
	ID          string                `json:"id"`
	Filename    string                `json:"filename"`
	ContentType string                `json:"content_type"`
	Size        int64                 `json:"size"`
	PageCount   int                   `json:"page_count"`
	ChunkCount  int                   `json:"chunk_count"`
	WordCount   int                   `json:"word_count"`
	Preview     string                `json:"preview,omitempty"`
	Location    string                `json:"location"`
	Status      domain.DocumentStatus `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
}

func newDocumentView(d *domain.Document) documentView {
	return documentView{
		ID:          d.ID,
		Filename:    d.Filename,
		ContentType: d.ContentType,
		Size:        d.Size,
		PageCount:   d.PageCount,
		ChunkCount:  d.ChunkCount,
		WordCount:   d.WordCount,
		Preview:     d.Preview,
		Location:    d.Location,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
	}
}

type chunkView struct {
	ID       string `json:"id"`
	Sequence int    `json:"sequence"`
	Page     int    `json:"page,omitempty"`
	Text     string `json:"text"`
}

type searchRequest struct {
	Query      string  `json:"query"`
	TopK       int     `json:"top_k"`
	MinScore   float64 `json:"min_score"`
	DocumentID string  `json:"document_id"`
}

type searchResponse struct {
	Results []domain.Passage `json:"results"`
	Count   int              `json:"count"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}
