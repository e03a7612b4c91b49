package service

import (
	"context"
	"time"

	apperrors "funny-video/pkg/errors"
	"funny-video/log"

	"go.uber.org/zap"
)

const (
	defaultRetryAttempts = 3
	retryBaseDelay       = 500 * time.Millisecond
	retryMaxDelay        = 8 * time.Second
)

// retryDelay doubles per attempt, capped at retryMaxDelay.
func retryDelay(attempt int) time.Duration {
	d := retryBaseDelay << attempt
	if d <= 0 || d > retryMaxDelay {
		return retryMaxDelay
	}
	return d
}

// withRetry calls fn up to attempts times and returns the last error. It stops
// early when ctx is done or the error is not retryable.
func withRetry(ctx context.Context, op string, attempts int, fn func() error) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 || !apperrors.Retryable(err) {
			break
		}
		log.GetLogger().Warn("操作失败，准备重试", zap.String("op", op), zap.Int("attempt", i+1), zap.Error(err))
		timer := time.NewTimer(retryDelay(i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
