package service

import (
	"context"
	"path/filepath"

	"funny-video/internal/storage"
	"funny-video/log"
	"funny-video/pkg/util"

	"go.uber.org/zap"
)

func normalizeArgs(src, out string) []string {
	args := []string{"-y", "-i", src}
	args = append(args, canonicalVideoArgs()...)
	args = append(args, "-r", canonicalFps)
	args = append(args, canonicalAudioArgs()...)
	return append(args, "-movflags", "+faststart", out)
}

// NormalizeUpload re-encodes an uploaded file to the canonical profile as
// <runDir>/<name>_new.<ext>, leaving the upload untouched. When the re-encode
// fails the original path is returned together with a warning.
func (s *Service) NormalizeUpload(ctx context.Context, src, runDir string) (string, string) {
	out := filepath.Join(runDir, util.WithSuffix(filepath.Base(src), "_new"))
	output, err := s.Runner.Run(ctx, storage.FfmpegPath, normalizeArgs(src, out)...)
	if err != nil {
		log.GetLogger().Warn("视频转码失败，使用原始文件", zap.String("src", src), zap.Error(err), zap.String("output", string(output)))
		return src, "上传视频转码失败，使用原始文件: " + err.Error()
	}
	log.GetLogger().Info("上传视频转码完成", zap.String("path", out))
	return out, ""
}
