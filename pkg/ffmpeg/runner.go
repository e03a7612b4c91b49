// Package ffmpeg runs external media tools with bounded execution time.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

var ErrTimeout = errors.New("command timed out")

// Runner executes commands with an argument list, never through a shell.
type Runner struct {
	Timeout time.Duration
}

func NewRunner(timeout time.Duration) *Runner {
	return &Runner{Timeout: timeout}
}

// Run returns the combined stdout/stderr of the command. The output is
// returned alongside the error when the command exits non-zero, since ffmpeg
// writes its diagnostics there.
func (r *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return output, fmt.Errorf("%s after %s: %w", name, r.Timeout, ErrTimeout)
	}
	if err != nil {
		return output, fmt.Errorf("%s: %w", name, err)
	}
	return output, nil
}
