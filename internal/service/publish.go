package service

import (
	"context"
	"path/filepath"
	"time"

	"funny-video/internal/appcore"
	"funny-video/internal/storage"
	"funny-video/internal/types"
	"funny-video/log"
	apperrors "funny-video/pkg/errors"
	"funny-video/pkg/objectstore"

	"go.uber.org/zap"
)

const (
	coverName        = "first_frame.jpg"
	updateTimeLayout = "2006-01-02 15:04:05"
)

func coverArgs(merged, out string) []string {
	return []string{"-i", merged, "-vframes", "1", "-q:v", "2", "-y", out}
}

// Publish extracts the cover frame of the merged reel, uploads the cover and the
// reel, then records the metadata row. A missing cover only costs the
// first_image_url.
func (s *Service) Publish(ctx context.Context, run *types.Run) (*types.PublishResult, appcore.Outcome) {
	if run.Merge == nil || run.Merge.MergedPath == "" {
		return nil, appcore.Skipped(appcore.StagePublish, "没有合成视频 nothing to publish")
	}
	if s.Uploader == nil {
		return nil, appcore.Skipped(appcore.StagePublish, "未配置对象存储 uploader disabled")
	}

	var warnings []string
	result := &types.PublishResult{}
	merged := run.Merge.MergedPath

	cover := filepath.Join(run.Dirs.Result, coverName)
	if output, err := s.Runner.Run(ctx, storage.FfmpegPath, coverArgs(merged, cover)...); err != nil {
		log.GetLogger().Warn("提取视频首帧失败", zap.Error(err), zap.String("output", string(output)))
		warnings = append(warnings, apperrors.Wrap(apperrors.CodeCoverFailed, "提取视频首帧失败", err).Error())
	} else {
		result.CoverPath = cover
	}
	result.Duration = s.durationClock(ctx, merged)

	if result.CoverPath != "" {
		url, err := s.upload(ctx, run, result.CoverPath)
		if err != nil {
			warnings = append(warnings, err.Error())
		}
		result.FirstImageUrl = url
	}

	url, err := s.upload(ctx, run, merged)
	if err != nil {
		return result, appcore.Failed(appcore.StagePublish, err, warnings...)
	}
	result.ResultVideoUrl = url

	if s.Videos == nil {
		warnings = append(warnings, "未配置视频元数据存储 metadata store disabled")
		return result, appcore.Succeeded(appcore.StagePublish, warnings...)
	}
	video := &types.VideoRecord{
		UserId:         run.UserId,
		Title:          run.Title,
		Description:    run.Description,
		FirstImageUrl:  result.FirstImageUrl,
		ResultVideoUrl: result.ResultVideoUrl,
		Duration:       result.Duration,
		UpdateTime:     time.Now().Format(updateTimeLayout),
	}
	if err = s.Videos.InsertVideo(ctx, video); err != nil {
		log.ForRun(run.RunId).Error("写入视频记录失败", zap.Error(err))
		return result, appcore.Failed(appcore.StagePublish, apperrors.Wrap(apperrors.CodeMetadataError, apperrors.ErrMetadataError.Message, err), warnings...)
	}
	log.ForRun(run.RunId).Info("视频发布完成", zap.String("url", result.ResultVideoUrl))
	return result, appcore.Succeeded(appcore.StagePublish, warnings...)
}

func (s *Service) upload(ctx context.Context, run *types.Run, localPath string) (string, error) {
	rel, err := filepath.Rel(run.Dirs.Root, localPath)
	if err != nil {
		rel = filepath.Base(localPath)
	}
	key := objectstore.ObjectKey(run.UserId, run.RunId, rel)
	contentType := objectstore.ContentTypeFor(localPath)

	var url string
	err = withRetry(ctx, "upload "+key, s.Options.UploadAttempts, func() error {
		var uploadErr error
		url, uploadErr = s.Uploader.Upload(ctx, localPath, key, contentType)
		return uploadErr
	})
	if err != nil {
		log.GetLogger().Error("上传文件失败", zap.String("key", key), zap.Error(err))
		return "", apperrors.Wrap(apperrors.CodeUploadFailed, apperrors.ErrUploadFailed.Message, err)
	}
	log.GetLogger().Info("上传文件成功", zap.String("key", key), zap.String("url", url))
	return url, nil
}
