package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseAnalysisKind tests kind parsing
func TestParseAnalysisKind(t *testing.T) {
	for _, kind := range ReportKinds() {
		got, err := ParseAnalysisKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, got)
	}

	_, err := ParseAnalysisKind("pricing")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// TestAnalysisTask_Origin tests attribution strings
func TestAnalysisTask_Origin(t *testing.T) {
	assert.Equal(t, "topic", AnalysisTask{Kind: AnalysisRisks, Topic: "penalties"}.Origin())
	assert.Equal(t, "chunk 2 (page 3)", AnalysisTask{Chunk: &Chunk{Sequence: 2, Page: 3}}.Origin())
	assert.Equal(t, "chunk 4", AnalysisTask{Chunk: &Chunk{Sequence: 4}}.Origin())
}

// TestNewTaskError tests error classification
func TestNewTaskError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind TaskErrorKind
	}{
		{"no context", fmt.Errorf("risks: %w", ErrNoRelevantContext), TaskErrorNoContext},
		{"malformed", fmt.Errorf("parse: %w", ErrMalformedOutput), TaskErrorMalformed},
		{"embedding", fmt.Errorf("embed: %w", ErrEmbeddingUnavailable), TaskErrorEmbedding},
		{"synthesis", fmt.Errorf("openai: %w", ErrSynthesisFailure), TaskErrorSynthesis},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), TaskErrorSynthesis},
		{"canceled", context.Canceled, TaskErrorSynthesis},
		{"other", errors.New("boom"), TaskErrorInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := NewTaskError(tt.err)
			assert.Equal(t, tt.kind, te.Kind)
			assert.Equal(t, tt.err.Error(), te.Message)
			assert.True(t, errors.Is(te, tt.err))
		})
	}
}

// TestNewTaskError_PassesThrough tests that an existing TaskError is reused
func TestNewTaskError_PassesThrough(t *testing.T) {
	orig := &TaskError{Kind: TaskErrorNotRun, Message: "analysis not run"}
	assert.Same(t, orig, NewTaskError(fmt.Errorf("wrap: %w", orig)))
}

// TestAnalysisResult_OK tests success detection
func TestAnalysisResult_OK(t *testing.T) {
	assert.True(t, AnalysisResult{Payload: []byte(`{}`)}.OK())
	assert.False(t, AnalysisResult{Err: &TaskError{Message: "x"}}.OK())
}
