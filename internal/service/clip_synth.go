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
	"funny-video/pkg/util"

	"go.uber.org/zap"
)

func clipPathFor(imagePath, dir string) string {
	return filepath.Join(dir, util.BaseNameNoExt(imagePath)+".mp4")
}

// clipArgs loops the still image for duration seconds. With source audio a
// silent track matching the probed layout is muxed in, otherwise the clip has
// no audio stream at all.
func clipArgs(imagePath string, report types.MediaProbeReport, duration float64, out string) []string {
	args := []string{"-y", "-loop", "1", "-i", imagePath}
	if report.HasAudio {
		args = append(args,
			"-f", "lavfi",
			"-i", fmt.Sprintf("anullsrc=channel_layout=%s:sample_rate=%s", report.AudioChannel, report.AudioSampleRate),
		)
	}
	args = append(args,
		"-t", strconv.FormatFloat(duration, 'f', 1, 64),
		"-r", report.Fps,
	)
	args = append(args, canonicalVideoArgs()...)
	if report.HasAudio {
		args = append(args, "-c:a", "aac", "-b:a", report.AudioBitrate)
	} else {
		args = append(args, "-an")
	}
	return append(args, "-movflags", "+faststart", out)
}

func (s *Service) SynthesizeClip(ctx context.Context, image types.StyledImage, report types.MediaProbeReport, dir string) (types.Clip, error) {
	out := clipPathFor(image.Path, dir)
	output, err := s.Runner.Run(ctx, storage.FfmpegPath, clipArgs(image.Path, report, s.Options.ClipDuration, out)...)
	if err != nil {
		log.GetLogger().Error("生成视频片段失败", zap.String("image", image.Path), zap.Error(err), zap.String("output", string(output)))
		return types.Clip{}, apperrors.Wrap(apperrors.CodeClipSynthFailed, fmt.Sprintf("第 %d 秒图片转视频失败", image.Timestamp), err)
	}
	log.GetLogger().Info("成功生成视频片段", zap.String("path", out))
	return types.Clip{Timestamp: image.Timestamp, Path: out}, nil
}

func (s *Service) SynthesizeClips(ctx context.Context, images []types.StyledImage, report types.MediaProbeReport, dir string) ([]types.Clip, appcore.Outcome) {
	if len(images) == 0 {
		return nil, appcore.Skipped(appcore.StageSynthesize, "没有风格化图片 no styled images")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, appcore.Failed(appcore.StageSynthesize, fmt.Errorf("create clip dir: %w", err))
	}

	clips, errs := fanOut(ctx, len(images), s.Options.Parallelism, func(ctx context.Context, i int) (types.Clip, error) {
		return s.SynthesizeClip(ctx, images[i], report, dir)
	})

	warnings := errorWarnings(errs)
	if len(clips) == 0 {
		return nil, appcore.Skipped(appcore.StageSynthesize, "所有图片转视频均失败 every clip failed", warnings...)
	}
	return clips, appcore.Succeeded(appcore.StageSynthesize, warnings...)
}
