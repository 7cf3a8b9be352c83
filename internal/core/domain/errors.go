package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no extractor handles the file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrDuplicateContent indicates the uploaded bytes were already ingested.
	// It is a user-facing rejection rather than a system fault.
	ErrDuplicateContent = errors.New("this RFP has already been uploaded")

	// ErrEmbeddingUnavailable indicates the embedding backend could not be reached.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrSynthesisFailure indicates the synthesis service errored or timed out.
	ErrSynthesisFailure = errors.New("synthesis service failed")

	// ErrMalformedOutput indicates the synthesis service replied with text
	// that does not parse as the expected schema.
	ErrMalformedOutput = errors.New("malformed synthesis output")

	// ErrNoRelevantContext labels an analysis that found nothing above the
	// retrieval threshold. Retrieval itself never returns it.
	ErrNoRelevantContext = errors.New("no relevant documents found")
)

// DocumentReadError reports that source bytes could not be turned into text.
// It is fatal to the whole ingestion request.
type DocumentReadError struct {
	Filename string
	Err      error
}

// Error implements error.
func (e *DocumentReadError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("read document: %v", e.Err)
	}
	return fmt.Sprintf("read document %s: %v", e.Filename, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DocumentReadError) Unwrap() error {
	return e.Err
}

// NewDocumentReadError wraps err as a DocumentReadError.
func NewDocumentReadError(filename string, err error) error {
	return &DocumentReadError{Filename: filename, Err: err}
}

// IsDocumentReadError reports whether err is or wraps a DocumentReadError.
func IsDocumentReadError(err error) bool {
	var target *DocumentReadError
	return errors.As(err, &target)
}
