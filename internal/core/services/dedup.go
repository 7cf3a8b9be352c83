package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
	"github.com/custodia-labs/rfp-analyst/internal/logger"
)

// blobPrefix namespaces uploaded RFPs inside the blob store.
const blobPrefix = "rfps/"

// Deduplicator addresses uploads by content so the same bytes are never
// processed twice. It is a read-before-write check, not a lock: two
// concurrent uploads of identical bytes may both pass Exists.
type Deduplicator struct {
	blobs driven.BlobStore
	docs  driven.DocumentStore
}

// NewDeduplicator creates a deduplicator. Either store may be nil, in
// which case it is not consulted.
func NewDeduplicator(blobs driven.BlobStore, docs driven.DocumentStore) *Deduplicator {
	return &Deduplicator{blobs: blobs, docs: docs}
}

// Hash returns the lowercase hex SHA-256 of data. The filename is never
// part of the digest.
func (d *Deduplicator) Hash(data []byte) string {
	return ContentHash(data)
}

// ContentHash returns the lowercase hex SHA-256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// BlobKey returns the object key for an upload: "rfps/<hash>-<filename>".
// Directory components of filename are dropped.
func BlobKey(hash, filename string) string {
	return blobPrefix + hash + "-" + sanitizeFilename(filename)
}

// Exists reports whether the upload is already known. The blob store is
// checked first, but the document registry decides: a blob with no
// registry record is an orphan left by an earlier run and is overwritten
// by the next ingest. Without a registry the blob store alone answers.
func (d *Deduplicator) Exists(ctx context.Context, hash, filename string) (bool, error) {
	blobHit := false
	if d.blobs != nil {
		ok, err := d.blobs.Exists(ctx, BlobKey(hash, filename))
		if err != nil {
			return false, fmt.Errorf("check blob: %w", err)
		}
		blobHit = ok
	}
	if d.docs == nil {
		return blobHit, nil
	}

	_, err := d.docs.GetDocument(ctx, hash)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		if blobHit {
			logger.Warn("%s: blob %s has no registry record, replacing it", filename, BlobKey(hash, filename))
		}
		return false, nil
	default:
		return false, fmt.Errorf("check registry: %w", err)
	}
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		return "upload"
	}
	return base
}
