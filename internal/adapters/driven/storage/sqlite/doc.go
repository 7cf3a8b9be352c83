// Package sqlite stores the document registry and the default similarity
// index in a single file, ~/.rfp-analyst/data/rfp.db, using the pure Go
// modernc.org/sqlite driver.
//
// One Store serves two ports over the same connection:
//
//   - DocumentStore: documents keyed by content hash, plus chunk text
//   - VectorIndex: chunk embeddings searched by brute-force cosine
//
// The schema lives in migrations/ as numbered .up.sql/.down.sql pairs.
// WAL mode lets the API server and the inbox watcher write concurrently.
package sqlite
