package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"funny-video/internal/types"
	"funny-video/log"
)

// TaskHandlers runs dequeued submissions through the pipeline.
type TaskHandlers struct {
	pipeline types.Pipeline
}

func NewTaskHandlers(p types.Pipeline) *TaskHandlers {
	return &TaskHandlers{pipeline: p}
}

// HandleReelRun returns an error only when the run could not start, so asynq
// retries infrastructure problems but never reruns a finished pipeline.
func (h *TaskHandlers) HandleReelRun(ctx context.Context, t *asynq.Task) error {
	var sub types.Submission
	if err := json.Unmarshal(t.Payload(), &sub); err != nil {
		return fmt.Errorf("unmarshal submission: %w: %w", err, asynq.SkipRetry)
	}
	if sub.RunId == "" {
		return fmt.Errorf("submission without run id: %w", asynq.SkipRetry)
	}

	logger := log.ForRun(sub.RunId)
	logger.Info("[Queue] processing run", zap.String("source", sub.SourcePath))
	run, err := h.pipeline.RunPipeline(ctx, sub)
	if err != nil {
		return err
	}
	logger.Info("[Queue] run finished", zap.String("status", string(run.Status)))
	return nil
}

func (h *TaskHandlers) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReelRun, h.HandleReelRun)
	return mux
}

// StartWorker blocks serving runs until the server shuts down.
func StartWorker(q *Queue, p types.Pipeline) error {
	log.GetLogger().Info("[Queue] starting worker",
		zap.String("redis_addr", q.cfg.RedisAddr),
		zap.Int("concurrency", q.cfg.Concurrency),
		zap.Duration("run_timeout", q.cfg.RunTimeout))
	return q.server.Run(NewTaskHandlers(p).Mux())
}
