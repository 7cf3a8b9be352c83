package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/logger"
)

// DefaultWorkers bounds fan-out when no worker count is configured.
const DefaultWorkers = 4

// TaskFunc executes one analysis task and returns its validated payload.
type TaskFunc func(ctx context.Context, task domain.AnalysisTask) (json.RawMessage, error)

// Orchestrator runs analysis tasks on a bounded pool and waits for all of
// them. A failing or panicking task never cancels its siblings.
type Orchestrator struct {
	workers int
	timeout time.Duration
}

// NewOrchestrator creates an orchestrator running at most workers tasks at
// once. A positive timeout caps each task independently.
func NewOrchestrator(workers int, timeout time.Duration) *Orchestrator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Orchestrator{workers: workers, timeout: timeout}
}

// Workers returns the pool size.
func (o *Orchestrator) Workers() int {
	return o.workers
}

// Run executes every task exactly once. Result i belongs to tasks[i], and
// each result carries either a payload or an error, never both.
func (o *Orchestrator) Run(ctx context.Context, tasks []domain.AnalysisTask, fn TaskFunc) []domain.AnalysisResult {
	results := make([]domain.AnalysisResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	logger.Debug("orchestrator: %d tasks, %d workers, timeout %s", len(tasks), o.workers, o.timeout)
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(o.workers)
	for i := range tasks {
		g.Go(func() error {
			results[i] = o.runOne(ctx, tasks[i], fn)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	logger.Debug("orchestrator: done in %s, %d/%d failed", time.Since(start), failed, len(tasks))
	return results
}

func (o *Orchestrator) runOne(ctx context.Context, task domain.AnalysisTask, fn TaskFunc) (res domain.AnalysisResult) {
	res.Task = task
	start := time.Now()

	taskCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	defer func() {
		res.Duration = time.Since(start)
		if r := recover(); r != nil {
			logger.Error("task %s panicked: %v\n%s", task.ID, r, debug.Stack())
			res.Payload = nil
			res.Err = domain.NewTaskError(fmt.Errorf("task %s panicked: %v", task.ID, r))
		}
	}()

	payload, err := fn(taskCtx, task)
	if err == nil && payload == nil {
		err = fmt.Errorf("%w: empty payload", domain.ErrMalformedOutput)
	}
	if err != nil {
		if errors.Is(taskCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrSynthesisFailure) {
			err = fmt.Errorf("%w: timed out after %s: %w", domain.ErrSynthesisFailure, o.timeout, err)
		}
		res.Err = domain.NewTaskError(err)
		logger.Debug("task %s (%s) failed: %v", task.ID, task.Kind, err)
		return res
	}

	res.Payload = payload
	return res
}
