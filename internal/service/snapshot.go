package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"funny-video/internal/appcore"
	"funny-video/internal/storage"
	"funny-video/internal/types"
	"funny-video/log"
	apperrors "funny-video/pkg/errors"

	"go.uber.org/zap"
)

func snapshotName(t int) string {
	return fmt.Sprintf("snapshot_%ds.jpg", t)
}

func snapshotArgs(src string, t int, out string) []string {
	return []string{
		"-y",
		"-ss", strconv.Itoa(t),
		"-i", src,
		"-vf", fmt.Sprintf("scale=%d:%d", types.CanonicalWidth, types.CanonicalHeight),
		"-s", fmt.Sprintf("%dx%d", types.CanonicalWidth, types.CanonicalHeight),
		"-vframes", "1",
		"-q:v", "2",
		out,
	}
}

// ExtractSnapshots grabs one frame per timestamp into dir. Names depend only on
// the timestamp, so a rerun overwrites the previous frames.
func (s *Service) ExtractSnapshots(ctx context.Context, src, dir string, timestamps []int) ([]types.Snapshot, appcore.Outcome) {
	if len(timestamps) == 0 {
		return nil, appcore.Skipped(appcore.StageSnapshot, "没有可用的时间点 no timestamps")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, appcore.Failed(appcore.StageSnapshot, fmt.Errorf("create snapshot dir: %w", err))
	}

	snapshots, errs := fanOut(ctx, len(timestamps), s.Options.Parallelism, func(ctx context.Context, i int) (types.Snapshot, error) {
		t := timestamps[i]
		out := filepath.Join(dir, snapshotName(t))
		output, err := s.Runner.Run(ctx, storage.FfmpegPath, snapshotArgs(src, t, out)...)
		if err != nil {
			log.GetLogger().Error("截取图片失败", zap.Int("timestamp", t), zap.Error(err), zap.String("output", string(output)))
			return types.Snapshot{}, apperrors.Wrap(apperrors.CodeSnapshotFailed, fmt.Sprintf("截取第 %d 秒图片失败", t), err)
		}
		log.GetLogger().Info("成功截取图片", zap.Int("timestamp", t), zap.String("path", out))
		return types.Snapshot{Timestamp: t, Path: out}, nil
	})

	warnings := errorWarnings(errs)
	if len(snapshots) == 0 {
		return nil, appcore.Skipped(appcore.StageSnapshot, "所有截图均失败 every snapshot failed", warnings...)
	}
	return snapshots, appcore.Succeeded(appcore.StageSnapshot, warnings...)
}

func errorWarnings(errs []error) []string {
	var warnings []string
	for _, err := range errs {
		if err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	return warnings
}
