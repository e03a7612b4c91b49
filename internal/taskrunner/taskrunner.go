// Package taskrunner runs submissions on an in-memory worker pool when no
// Redis queue is configured. Queued runs are lost when the process exits;
// storage.MarkStaleRuns fails them on the next start.
package taskrunner

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"funny-video/internal/types"
	"funny-video/log"
)

var (
	ErrRunnerStopped = errors.New("task runner stopped")
	ErrQueueFull     = errors.New("task queue is full")
	ErrDuplicateRun  = errors.New("run already queued or running")
)

type Config struct {
	QueueSize   int
	Concurrency int
	// RunTimeout bounds a single pipeline run, zero means no limit.
	RunTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{QueueSize: 128, Concurrency: 2}
}

type Runner struct {
	pipeline types.Pipeline
	cfg      Config
	queue    chan types.Submission

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
	// tracked holds every run id between SubmitRun and the end of its pipeline
	tracked map[string]bool
}

// New starts cfg.Concurrency workers feeding p.
func New(p types.Pipeline, cfg Config) *Runner {
	def := DefaultConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		pipeline: p,
		cfg:      cfg,
		queue:    make(chan types.Submission, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		tracked:  make(map[string]bool),
	}
	r.wg.Add(cfg.Concurrency)
	for id := 1; id <= cfg.Concurrency; id++ {
		go r.work(id)
	}
	return r
}

// SubmitRun queues sub without blocking.
func (r *Runner) SubmitRun(sub types.Submission) error {
	if sub.RunId == "" {
		return errors.New("run id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrRunnerStopped
	}
	if r.tracked[sub.RunId] {
		return ErrDuplicateRun
	}
	select {
	case r.queue <- sub:
	default:
		return ErrQueueFull
	}
	r.tracked[sub.RunId] = true
	log.ForRun(sub.RunId).Info("[TaskRunner] run queued", zap.Int("pending", len(r.queue)))
	return nil
}

func (r *Runner) work(workerID int) {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case sub := <-r.queue:
			if r.ctx.Err() != nil {
				return
			}
			r.execute(workerID, sub)
		}
	}
}

func (r *Runner) execute(workerID int, sub types.Submission) {
	defer r.release(sub.RunId)
	logger := log.ForRun(sub.RunId).With(zap.Int("worker_id", workerID))
	if r.pipeline == nil {
		logger.Error("[TaskRunner] pipeline not initialized")
		return
	}

	ctx := r.ctx
	if r.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RunTimeout)
		defer cancel()
	}

	started := time.Now()
	run, err := r.pipeline.RunPipeline(ctx, sub)
	if err != nil {
		logger.Error("[TaskRunner] run failed to start", zap.Error(err))
		return
	}
	logger.Info("[TaskRunner] run finished",
		zap.String("status", string(run.Status)),
		zap.Duration("elapsed", time.Since(started)))
}

func (r *Runner) release(runId string) {
	r.mu.Lock()
	delete(r.tracked, runId)
	r.mu.Unlock()
}

// Close cancels in-flight runs and waits for the workers to exit. Runs still
// in the queue are dropped.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}

// Pending is the number of runs waiting for a worker.
func (r *Runner) Pending() int {
	return len(r.queue)
}

// Tracked lists queued and running run ids in sorted order.
func (r *Runner) Tracked() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.tracked))
	for id := range r.tracked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
