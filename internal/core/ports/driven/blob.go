package driven

import "context"

// BlobStore keeps the original uploaded bytes under a content-addressed key.
type BlobStore interface {
	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// Put stores data under key and returns its public location.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes the object and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
}
