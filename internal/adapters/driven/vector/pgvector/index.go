// Package pgvector provides a VectorIndex backed by PostgreSQL with the
// pgvector extension.
package pgvector

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
	"github.com/custodia-labs/rfp-analyst/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// DefaultTable is the table holding chunk vectors.
const DefaultTable = "rfp_chunks"

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Config holds configuration for the pgvector index.
type Config struct {
	// DSN is the postgres connection string (required).
	DSN string

	// Table is the table name (default: rfp_chunks).
	Table string

	// Dimensions is the embedding size; it fixes the column type (required).
	Dimensions int
}

// Index stores vectors in a postgres table and ranks by cosine distance.
type Index struct {
	pool  *pgxpool.Pool
	table string
	dims  int
}

// New connects, enables the extension and ensures the table exists.
func New(ctx context.Context, cfg Config) (*Index, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("pgvector: dsn is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("pgvector: dimensions must be positive")
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	if !tableName.MatchString(cfg.Table) {
		return nil, fmt.Errorf("pgvector: invalid table name %q", cfg.Table)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgvector: parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgvector: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgvector: ping: %w", err)
	}

	idx := &Index{pool: pool, table: cfg.Table, dims: cfg.Dimensions}
	if err := idx.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Debug("pgvector: using table %s (%d dims)", idx.table, idx.dims)
	return idx, nil
}

func (i *Index) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(i.table, i.dims) {
		if _, err := i.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("pgvector: schema: %w", err)
		}
	}
	return nil
}

func schemaStatements(table string, dims int) []string {
	return []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id          TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			page        INTEGER NOT NULL DEFAULT 0,
			content     TEXT NOT NULL,
			embedding   vector(%d) NOT NULL
		)`, table, dims),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_document_idx ON %s (document_id)", table, table),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING hnsw (embedding vector_cosine_ops)", table, table),
	}
}

// Index upserts records in one batch.
func (i *Index) Index(ctx context.Context, records []driven.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	q := fmt.Sprintf(`INSERT INTO %s (id, document_id, page, content, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			document_id = EXCLUDED.document_id,
			page = EXCLUDED.page,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding`, i.table)
	for _, r := range records {
		if len(r.Embedding) != i.dims {
			return fmt.Errorf("pgvector: record %s has %d dimensions, want %d", r.ID, len(r.Embedding), i.dims)
		}
		batch.Queue(q, r.ID, r.DocumentID, r.Page, r.Text, pgvector.NewVector(r.Embedding))
	}

	if err := i.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("pgvector: index: %w", err)
	}
	return nil
}

// Search ranks by cosine distance. Score is 1 - distance.
func (i *Index) Search(ctx context.Context, query []float32, k int, documentID string) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	q := fmt.Sprintf(`SELECT id, document_id, page, content, 1 - (embedding <=> $1) AS score
		FROM %s
		WHERE ($2 = '' OR document_id = $2)
		ORDER BY embedding <=> $1, id
		LIMIT $3`, i.table)

	rows, err := i.pool.Query(ctx, q, pgvector.NewVector(query), documentID, k)
	if err != nil {
		return nil, fmt.Errorf("pgvector: search: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		var h driven.VectorHit
		if err := rows.Scan(&h.ID, &h.DocumentID, &h.Page, &h.Text, &h.Score); err != nil {
			return nil, fmt.Errorf("pgvector: scan: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector: search: %w", err)
	}
	return hits, nil
}

// DeleteDocument removes every vector of a document.
func (i *Index) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	tag, err := i.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE document_id = $1", i.table), documentID)
	if err != nil {
		return 0, fmt.Errorf("pgvector: delete: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Close releases the connection pool.
func (i *Index) Close() error {
	i.pool.Close()
	return nil
}
