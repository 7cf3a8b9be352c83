package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// AnalysisKind names one structured question asked of an RFP.
type AnalysisKind string

// Supported analysis kinds.
const (
	AnalysisEligibility  AnalysisKind = "eligibility"
	AnalysisRequirements AnalysisKind = "requirements"
	AnalysisRisks        AnalysisKind = "risks"
	AnalysisChecklist    AnalysisKind = "checklist"
	AnalysisMetadata     AnalysisKind = "metadata"
	AnalysisCompliance   AnalysisKind = "compliance"
)

// ReportKinds are the slots every Report carries, in display order.
func ReportKinds() []AnalysisKind {
	return []AnalysisKind{
		AnalysisEligibility,
		AnalysisRequirements,
		AnalysisRisks,
		AnalysisChecklist,
		AnalysisMetadata,
		AnalysisCompliance,
	}
}

// IsValid returns true if the kind is recognised.
func (k AnalysisKind) IsValid() bool {
	switch k {
	case AnalysisEligibility, AnalysisRequirements, AnalysisRisks,
		AnalysisChecklist, AnalysisMetadata, AnalysisCompliance:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k AnalysisKind) String() string {
	return string(k)
}

// ParseAnalysisKind converts a user-supplied name to a kind.
func ParseAnalysisKind(s string) (AnalysisKind, error) {
	k := AnalysisKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("%w: unknown analysis kind %q", ErrInvalidInput, s)
	}
	return k, nil
}

// AnalysisTask is one unit of concurrent work. It is executed exactly once.
type AnalysisTask struct {
	// ID is unique within one orchestrator run.
	ID string

	// Kind selects the prompt and payload schema.
	Kind AnalysisKind

	// DocumentID scopes retrieval to one document.
	DocumentID string

	// Topic is the retrieval query used in topic mode.
	Topic string

	// Chunk is set in per-chunk mode; the task reads only this chunk's text.
	Chunk *Chunk
}

// Origin describes where the task's input came from, for attribution.
func (t AnalysisTask) Origin() string {
	if t.Chunk != nil {
		if t.Chunk.HasPage() {
			return fmt.Sprintf("chunk %d (page %d)", t.Chunk.Sequence, t.Chunk.Page)
		}
		return fmt.Sprintf("chunk %d", t.Chunk.Sequence)
	}
	return "topic"
}

// TaskErrorKind classifies why a task produced no payload.
type TaskErrorKind string

// Task error kinds.
const (
	TaskErrorSynthesis TaskErrorKind = "synthesis_failure"
	TaskErrorMalformed TaskErrorKind = "malformed_output"
	TaskErrorNoContext TaskErrorKind = "no_relevant_context"
	TaskErrorEmbedding TaskErrorKind = "embedding_unavailable"
	TaskErrorNotRun    TaskErrorKind = "not_run"
	TaskErrorInternal  TaskErrorKind = "internal"
)

// TaskError is the error payload of a failed AnalysisResult.
type TaskError struct {
	Kind    TaskErrorKind `json:"kind"`
	Message string        `json:"error"`
	err     error
}

// Error implements error.
func (e *TaskError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause when known.
func (e *TaskError) Unwrap() error {
	return e.err
}

// NewTaskError classifies err into a TaskError.
func NewTaskError(err error) *TaskError {
	var te *TaskError
	if errors.As(err, &te) {
		return te
	}

	kind := TaskErrorInternal
	switch {
	case errors.Is(err, ErrNoRelevantContext):
		kind = TaskErrorNoContext
	case errors.Is(err, ErrMalformedOutput):
		kind = TaskErrorMalformed
	case errors.Is(err, ErrEmbeddingUnavailable):
		kind = TaskErrorEmbedding
	case errors.Is(err, ErrSynthesisFailure),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		kind = TaskErrorSynthesis
	}
	return &TaskError{Kind: kind, Message: err.Error(), err: err}
}

// AnalysisResult pairs a task with either a payload or an error. Exactly
// one of Payload and Err is set.
type AnalysisResult struct {
	Task     AnalysisTask
	Payload  json.RawMessage
	Err      *TaskError
	Duration time.Duration
}

// OK reports whether the task produced a payload.
func (r AnalysisResult) OK() bool {
	return r.Err == nil
}

// NoRelevantContext is the task error for an analysis whose retrieval
// found nothing above the threshold.
func NoRelevantContext(kind AnalysisKind) *TaskError {
	return &TaskError{
		Kind:    TaskErrorNoContext,
		Message: fmt.Sprintf("No relevant documents found for %s analysis", kind),
		err:     ErrNoRelevantContext,
	}
}

// NotRun marks a report slot no task was scheduled for.
func NotRun() *TaskError {
	return &TaskError{Kind: TaskErrorNotRun, Message: "analysis not run"}
}
