package dto

import (
	"encoding/json"
	"strconv"
	"strings"

	"funny-video/internal/types"

	"github.com/samber/lo"
)

// SubmitReelReq 提交视频生成任务，文件通过 multipart 的 file 字段上传
type SubmitReelReq struct {
	UserId      string `form:"user_id"`
	Title       string `form:"title"`
	Description string `form:"description"`
	Moments     string `form:"moments" binding:"required"` // 逗号分隔的秒数，如 "2,5,8"
}

type SubmitReelRes struct {
	RunId  string `json:"run_id"`
	Status string `json:"status"`
}

type GetReelReq struct {
	RunId string `uri:"runId" binding:"required"`
}

type ReelHistoryReq struct {
	UserId string `form:"user_id"`
	Limit  int    `form:"limit"`
}

type ReelStatus struct {
	RunId          string              `json:"run_id"`
	UserId         string              `json:"user_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Status         string              `json:"status"`
	CurrentStage   string              `json:"current_stage,omitempty"`
	Timestamps     []int               `json:"timestamps"`
	Stages         []types.StageReport `json:"stages"`
	MergedPath     string              `json:"merged_path,omitempty"` // 可通过 /api/file/ 下载
	FirstImageUrl  string              `json:"first_image_url,omitempty"`
	ResultVideoUrl string              `json:"result_video_url,omitempty"`
	Duration       string              `json:"duration,omitempty"`
	FailReason     string              `json:"fail_reason,omitempty"`
	CreateTime     int64               `json:"create_time"`
	UpdateTime     int64               `json:"update_time"`
}

type ReelHistoryRes struct {
	Runs []ReelStatus `json:"runs"`
}

type FileItem struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	ModTime int64  `json:"mod_time"`
}

// ReelStatusFromRecord converts a stored run record. Unparseable timestamps or
// stage reports are left out rather than failing the request.
func ReelStatusFromRecord(rec types.RunRecord) ReelStatus {
	var stages []types.StageReport
	if rec.Outcomes != "" {
		_ = json.Unmarshal([]byte(rec.Outcomes), &stages)
	}
	return ReelStatus{
		RunId:          rec.RunId,
		UserId:         rec.UserId,
		Title:          rec.Title,
		Description:    rec.Description,
		Status:         rec.Status,
		CurrentStage:   rec.CurrentStage,
		Timestamps:     parseInts(rec.Timestamps),
		Stages:         lo.Ternary(stages == nil, []types.StageReport{}, stages),
		FirstImageUrl:  rec.FirstImageUrl,
		ResultVideoUrl: rec.ResultVideoUrl,
		Duration:       rec.Duration,
		FailReason:     rec.FailReason,
		CreateTime:     rec.CreateTime,
		UpdateTime:     rec.UpdateTime,
	}
}

func parseInts(raw string) []int {
	return lo.FilterMap(strings.Split(raw, ","), func(s string, _ int) (int, bool) {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		return v, err == nil
	})
}
