// Package worker runs the replay workers that keep the standings board in
// sync with the round store.
package worker

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"time"

	"github.com/clefscore/clef/internal/adapters/mq/queue"
	"github.com/clefscore/clef/internal/domain/model"
	"github.com/clefscore/clef/pkg/logger"
	"github.com/clefscore/clef/pkg/metrics"
)

// Shutdown timing.
const (
	workerShutdownTimeout = 5 * time.Second
)

// HistorySource supplies a user's ordered round history.
type HistorySource interface {
	RoundsByUser(ctx context.Context, userID string) ([]model.RoundRecord, error)
}

// BoardSink receives recomputed ratings.
type BoardSink interface {
	SetRating(ctx context.Context, userID string, rating int)
}

// JobSource defines how workers receive jobs.
type JobSource interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// ComputeFunc adapts the rating engine's replay without importing it,
// keeping the worker loop decoupled from the engine package.
type ComputeFunc func(rounds []model.RoundRecord) (final float64, skipped int, err error)

// Worker drains recompute jobs and publishes fresh ratings.
type Worker struct {
	jobs    JobSource
	rounds  HistorySource
	board   BoardSink
	compute ComputeFunc
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker.
func NewWorker(jobs JobSource, rounds HistorySource, board BoardSink, compute ComputeFunc, opts ...Option) *Worker {
	w := &Worker{
		jobs:     jobs,
		rounds:   rounds,
		board:    board,
		compute:  compute,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the worker loop until ctx is canceled or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobChan := w.jobs.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobChan:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "recompute failed",
					logger.String("user_id", job.UserID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker shutdown timed out: %w", ctx.Err())
	}
}

// process replays one user's history and publishes the rounded rating.
func (w *Worker) process(ctx context.Context, job queue.Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordReplayDuration(float64(time.Since(start).Milliseconds()))
	}()

	history, err := w.rounds.RoundsByUser(ctx, job.UserID)
	if err != nil {
		metrics.RecordReplayError()
		metrics.RecordErrorByComponent("worker", "history_load")
		return fmt.Errorf("load history for %s: %w", job.UserID, err)
	}

	final, skipped, err := w.compute(history)
	if err != nil {
		metrics.RecordReplayError()
		metrics.RecordErrorByComponent("worker", "replay")
		return fmt.Errorf("replay history for %s: %w", job.UserID, err)
	}

	metrics.RecordReplay()
	metrics.RecordUnratableRounds(skipped)

	w.board.SetRating(ctx, job.UserID, int(math.Round(final)))
	metrics.RecordBoardUpdate()

	w.logger.Debug(ctx, "rating republished",
		logger.String("user_id", job.UserID),
		logger.Float64("rating", final),
		logger.Int("rounds", len(history)),
		logger.Int("skipped", skipped),
	)
	return nil
}

// Pool manages a fixed set of workers.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates workerCount workers sharing one job source.
func NewPool(workerCount int, jobs JobSource, rounds HistorySource, board BoardSink, compute ComputeFunc) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(jobs, rounds, board, compute,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker did not stop in time", logger.Error(err))
		}
	}
	metrics.UpdateWorkerCount(0)
}
