package handler

import (
	"errors"
	"os"
	"path/filepath"

	"funny-video/internal/appcore"
	"funny-video/internal/dto"
	"funny-video/internal/response"
	"funny-video/internal/types"
	"funny-video/log"
	apperrors "funny-video/pkg/errors"
	"funny-video/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

func (h Handler) SubmitReel(c *gin.Context) {
	var req dto.SubmitReelReq
	if err := c.ShouldBind(&req); err != nil {
		log.GetLogger().Error("SubmitReel ShouldBind err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "未上传任何文件", err))
		return
	}

	runId := uuid.NewString()
	saveDir := filepath.Join(preferredUploadRoot(), runId)
	if err = os.MkdirAll(saveDir, 0o755); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "文件保存失败", err))
		return
	}
	savePath := filepath.Join(saveDir, util.SanitizeFileName(file.Filename))
	if err = c.SaveUploadedFile(file, savePath); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "文件保存失败: "+file.Filename, err))
		return
	}
	log.GetLogger().Info("SubmitReel received upload", zap.String("run_id", runId), zap.String("path", savePath), zap.Any("req", req))

	sub, err := h.Service.PrepareSubmission(types.Submission{
		RunId:       runId,
		UserId:      req.UserId,
		Title:       req.Title,
		Description: req.Description,
		SourcePath:  savePath,
		Moments:     req.Moments,
	})
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	if err = h.Submitter.SubmitRun(sub); err != nil {
		log.GetLogger().Error("SubmitReel SubmitRun err", zap.String("run_id", runId), zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeUnknown, "任务提交失败", err))
		return
	}
	response.Accepted(c, dto.SubmitReelRes{RunId: sub.RunId, Status: string(appcore.RunStatusPending)})
}

func (h Handler) GetReel(c *gin.Context) {
	var req dto.GetReelReq
	if err := c.ShouldBindUri(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	rec, err := h.Runs.GetRun(req.RunId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.ErrorResponse(c, apperrors.ErrRunNotFound)
		return
	}
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "查询任务失败", err))
		return
	}
	response.Success(c, reelStatus(*rec))
}

func (h Handler) GetReelHistory(c *gin.Context) {
	var req dto.ReelHistoryReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = lo.Min([]int{limit, maxHistoryLimit})

	records, err := h.Runs.GetRunHistory(req.UserId, limit)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "查询历史任务失败", err))
		return
	}
	response.Success(c, dto.ReelHistoryRes{Runs: lo.Map(records, func(rec types.RunRecord, _ int) dto.ReelStatus {
		return reelStatus(rec)
	})})
}

func reelStatus(rec types.RunRecord) dto.ReelStatus {
	status := dto.ReelStatusFromRecord(rec)
	if rec.MergedPath != "" {
		if p, err := artifactDownloadPath(rec.MergedPath); err == nil {
			status.MergedPath = p
		}
	}
	return status
}
