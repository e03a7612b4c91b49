// Package queue provides background run processing using Asynq.
// Runs survive a restart of the API process as long as Redis keeps them.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"funny-video/config"
	"funny-video/internal/types"
	"funny-video/log"
)

const (
	TypeReelRun = "reel:run"
	queueName   = "reels"
	maxRetry    = 2
	maxDelay    = 5 * time.Minute
)

var ErrDuplicateRun = errors.New("run already enqueued")

type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
	RunTimeout    time.Duration
}

func ConfigFromConf() Config {
	q := config.Conf.Queue
	return Config{
		RedisAddr:     q.RedisAddr,
		RedisPassword: q.RedisPassword,
		RedisDB:       q.RedisDB,
		Concurrency:   q.Concurrency,
		RunTimeout:    time.Duration(q.RunTimeoutMinutes) * time.Minute,
	}
}

type Queue struct {
	client *asynq.Client
	server *asynq.Server
	cfg    Config
}

// retryDelay doubles from 10s and caps at maxDelay.
func retryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n > 5 {
		return maxDelay
	}
	return min(time.Duration(10<<uint(n))*time.Second, maxDelay)
}

func NewQueue(cfg Config) *Queue {
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = time.Hour
	}
	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:    cfg.Concurrency,
		Queues:         map[string]int{queueName: 1},
		RetryDelayFunc: retryDelay,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			log.GetLogger().Error("[Queue] run task failed",
				zap.String("type", task.Type()),
				zap.Int("retried", retried),
				zap.ByteString("payload", task.Payload()),
				zap.Error(err))
		}),
	})

	return &Queue{client: asynq.NewClient(redisOpt), server: server, cfg: cfg}
}

// newRunTask keys the task by run id so Redis rejects a second enqueue of the
// same run while the first is still retained.
func newRunTask(sub types.Submission, timeout time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}
	return asynq.NewTask(TypeReelRun, data,
		asynq.TaskID(sub.RunId),
		asynq.Queue(queueName),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(timeout),
	), nil
}

// SubmitRun enqueues a prepared submission.
func (q *Queue) SubmitRun(sub types.Submission) error {
	task, err := newRunTask(sub, q.cfg.RunTimeout)
	if err != nil {
		return err
	}

	info, err := q.client.Enqueue(task)
	switch {
	case errors.Is(err, asynq.ErrTaskIDConflict):
		return fmt.Errorf("%w: %s", ErrDuplicateRun, sub.RunId)
	case err != nil:
		return fmt.Errorf("enqueue run: %w", err)
	}

	log.ForRun(sub.RunId).Info("[Queue] run enqueued", zap.String("task_id", info.ID), zap.String("queue", info.Queue))
	return nil
}

func (q *Queue) Close() error {
	q.server.Shutdown()
	return q.client.Close()
}
