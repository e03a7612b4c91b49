package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"funny-video/internal/appcore"
	"funny-video/internal/types"
	"funny-video/log"
	apperrors "funny-video/pkg/errors"

	"go.uber.org/zap"
)

func funnyName(t int) string {
	return fmt.Sprintf("funny_%ds.jpg", t)
}

// RestyleSnapshots sends every snapshot to the restyle provider and stores the
// returned images in dir. A failed image is left out of the result.
func (s *Service) RestyleSnapshots(ctx context.Context, snapshots []types.Snapshot, dir string) ([]types.StyledImage, appcore.Outcome) {
	if s.Restyler == nil {
		return nil, appcore.Skipped(appcore.StageRestyle, "未配置风格化服务 restyle provider disabled")
	}
	if len(snapshots) == 0 {
		return nil, appcore.Skipped(appcore.StageRestyle, "没有可用的截图 no snapshots")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, appcore.Failed(appcore.StageRestyle, fmt.Errorf("create funnies dir: %w", err))
	}

	images, errs := fanOut(ctx, len(snapshots), s.Options.Parallelism, func(ctx context.Context, i int) (types.StyledImage, error) {
		snap := snapshots[i]
		data, err := s.Restyler.Restyle(ctx, snap.Path, s.Options.Prompt)
		if err != nil {
			log.GetLogger().Error("调用风格化接口失败", zap.String("snapshot", snap.Path), zap.Error(err))
			return types.StyledImage{}, apperrors.Wrap(apperrors.CodeRestyleFailed, fmt.Sprintf("第 %d 秒图片风格化失败", snap.Timestamp), err)
		}
		out := filepath.Join(dir, funnyName(snap.Timestamp))
		if err = os.WriteFile(out, data, 0o644); err != nil {
			return types.StyledImage{}, apperrors.Wrap(apperrors.CodeFileWriteError, "保存风格化图片失败", err)
		}
		log.GetLogger().Info("成功下载并保存图片", zap.String("path", out))
		return types.StyledImage{Timestamp: snap.Timestamp, Path: out}, nil
	})

	warnings := errorWarnings(errs)
	if len(images) == 0 {
		return nil, appcore.Skipped(appcore.StageRestyle, "所有图片风格化均失败 every restyle failed", warnings...)
	}
	return images, appcore.Succeeded(appcore.StageRestyle, warnings...)
}
