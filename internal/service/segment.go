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

// segmentBounds returns len(timestamps)+1 contiguous segments. The first
// starts at 0 and the last is open-ended.
func segmentBounds(timestamps []int) []types.Segment {
	segments := make([]types.Segment, 0, len(timestamps)+1)
	start := 0
	for i, t := range timestamps {
		segments = append(segments, types.Segment{Index: i + 1, Start: start, End: t})
		start = t
	}
	return append(segments, types.Segment{Index: len(timestamps) + 1, Start: start, End: -1})
}

func segmentName(index int) string {
	return fmt.Sprintf("segment_%d.mp4", index)
}

func segmentArgs(src string, seg types.Segment, out string) []string {
	args := []string{"-y", "-ss", strconv.Itoa(seg.Start), "-i", src}
	if !seg.OpenEnded() {
		args = append(args, "-t", strconv.Itoa(seg.End-seg.Start))
	}
	args = append(args, canonicalVideoArgs()...)
	args = append(args, "-r", canonicalFps)
	args = append(args, canonicalAudioArgs()...)
	return append(args, "-movflags", "+faststart", out)
}

// SplitSegments cuts src at the planned timestamps. A failed segment is
// dropped, shrinking the sequence.
func (s *Service) SplitSegments(ctx context.Context, src, dir string, timestamps []int) ([]types.Segment, appcore.Outcome) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, appcore.Failed(appcore.StageSegment, fmt.Errorf("create result dir: %w", err))
	}

	bounds := segmentBounds(timestamps)
	segments, errs := fanOut(ctx, len(bounds), s.Options.Parallelism, func(ctx context.Context, i int) (types.Segment, error) {
		seg := bounds[i]
		seg.Path = filepath.Join(dir, segmentName(seg.Index))
		output, err := s.Runner.Run(ctx, storage.FfmpegPath, segmentArgs(src, seg, seg.Path)...)
		if err != nil {
			log.GetLogger().Error("截取视频片段失败", zap.Int("index", seg.Index), zap.Error(err), zap.String("output", string(output)))
			return types.Segment{}, apperrors.Wrap(apperrors.CodeSegmentFailed, fmt.Sprintf("截取视频片段 %d 失败", seg.Index), err)
		}
		log.GetLogger().Info("成功截取视频片段", zap.Int("index", seg.Index), zap.String("path", seg.Path))
		return seg, nil
	})

	warnings := errorWarnings(errs)
	if len(segments) == 0 {
		return nil, appcore.Skipped(appcore.StageSegment, "所有视频片段均截取失败 every segment failed", warnings...)
	}
	return segments, appcore.Succeeded(appcore.StageSegment, warnings...)
}
