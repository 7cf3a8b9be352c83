package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

func makeTasks(n int) []domain.AnalysisTask {
	tasks := make([]domain.AnalysisTask, n)
	for i := range tasks {
		tasks[i] = domain.AnalysisTask{ID: fmt.Sprintf("t%d", i), Kind: domain.AnalysisRisks}
	}
	return tasks
}

func TestOrchestrator_ResultsAlignWithTasks(t *testing.T) {
	o := NewOrchestrator(3, 0)
	tasks := makeTasks(10)

	results := o.Run(context.Background(), tasks, func(_ context.Context, task domain.AnalysisTask) (json.RawMessage, error) {
		// Finish out of order.
		if task.ID == "t0" {
			time.Sleep(20 * time.Millisecond)
		}
		return json.RawMessage(`"` + task.ID + `"`), nil
	})

	require.Len(t, results, 10)
	for i, r := range results {
		assert.Equal(t, tasks[i].ID, r.Task.ID)
		assert.JSONEq(t, `"`+tasks[i].ID+`"`, string(r.Payload))
		assert.Nil(t, r.Err)
	}
}

func TestOrchestrator_FailuresAreCapturedPerTask(t *testing.T) {
	o := NewOrchestrator(4, 0)
	tasks := makeTasks(7)
	failing := map[string]bool{"t1": true, "t4": true, "t6": true}

	results := o.Run(context.Background(), tasks, func(_ context.Context, task domain.AnalysisTask) (json.RawMessage, error) {
		if failing[task.ID] {
			return nil, fmt.Errorf("%w: boom", domain.ErrSynthesisFailure)
		}
		return json.RawMessage(`{}`), nil
	})

	ok, failed := 0, 0
	for _, r := range results {
		// Success xor error.
		assert.NotEqual(t, r.Payload == nil, r.Err == nil)
		if r.OK() {
			ok++
			continue
		}
		failed++
		assert.True(t, failing[r.Task.ID])
		assert.Equal(t, domain.TaskErrorSynthesis, r.Err.Kind)
	}
	assert.Equal(t, 4, ok)
	assert.Equal(t, 3, failed)
}

func TestOrchestrator_PanicBecomesInternalError(t *testing.T) {
	o := NewOrchestrator(2, 0)
	tasks := makeTasks(3)

	results := o.Run(context.Background(), tasks, func(_ context.Context, task domain.AnalysisTask) (json.RawMessage, error) {
		if task.ID == "t1" {
			panic("nil map")
		}
		return json.RawMessage(`{}`), nil
	})

	assert.True(t, results[0].OK())
	require.False(t, results[1].OK())
	assert.Equal(t, domain.TaskErrorInternal, results[1].Err.Kind)
	assert.Contains(t, results[1].Err.Message, "nil map")
	assert.Nil(t, results[1].Payload)
	assert.True(t, results[2].OK())
}

func TestOrchestrator_RunsConcurrently(t *testing.T) {
	const n = 4
	const delay = 150 * time.Millisecond
	o := NewOrchestrator(n, 0)

	start := time.Now()
	results := o.Run(context.Background(), makeTasks(n), func(ctx context.Context, _ domain.AnalysisTask) (json.RawMessage, error) {
		time.Sleep(delay)
		return json.RawMessage(`{}`), nil
	})
	elapsed := time.Since(start)

	for _, r := range results {
		assert.True(t, r.OK())
	}
	// Wall time tracks the slowest task, not the sum.
	assert.Less(t, elapsed, delay*n/2)
}

func TestOrchestrator_RespectsWorkerLimit(t *testing.T) {
	o := NewOrchestrator(2, 0)
	var active, peak atomic.Int32

	o.Run(context.Background(), makeTasks(8), func(_ context.Context, _ domain.AnalysisTask) (json.RawMessage, error) {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		return json.RawMessage(`{}`), nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, 2, o.Workers())
}

func TestOrchestrator_TimeoutIsolatesSlowTask(t *testing.T) {
	o := NewOrchestrator(3, 50*time.Millisecond)
	tasks := makeTasks(3)

	results := o.Run(context.Background(), tasks, func(ctx context.Context, task domain.AnalysisTask) (json.RawMessage, error) {
		if task.ID != "t1" {
			return json.RawMessage(`{}`), nil
		}
		<-ctx.Done()
		return nil, errors.New("gave up")
	})

	assert.True(t, results[0].OK())
	require.False(t, results[1].OK())
	assert.Equal(t, domain.TaskErrorSynthesis, results[1].Err.Kind)
	assert.Contains(t, results[1].Err.Message, "timed out")
	assert.True(t, results[2].OK())
}

func TestOrchestrator_NilPayloadIsMalformed(t *testing.T) {
	results := NewOrchestrator(1, 0).Run(context.Background(), makeTasks(1),
		func(_ context.Context, _ domain.AnalysisTask) (json.RawMessage, error) {
			return nil, nil
		})

	require.False(t, results[0].OK())
	assert.Equal(t, domain.TaskErrorMalformed, results[0].Err.Kind)
}

func TestOrchestrator_NoTasks(t *testing.T) {
	results := NewOrchestrator(0, 0).Run(context.Background(), nil, nil)

	assert.Empty(t, results)
}
