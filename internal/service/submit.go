package service

import (
	"fmt"
	"os"
	"strings"

	"funny-video/internal/appcore"
	"funny-video/internal/types"
	apperrors "funny-video/pkg/errors"

	"github.com/google/uuid"
)

func NewRunId() string {
	return uuid.NewString()
}

// PrepareSubmission validates a submission, assigns a run id when missing and
// records it as pending so it can be polled before a worker picks it up.
func (s *Service) PrepareSubmission(sub types.Submission) (types.Submission, error) {
	sub.SourcePath = strings.TrimSpace(sub.SourcePath)
	if sub.SourcePath == "" {
		return sub, apperrors.WrapWithDetail(apperrors.CodeInvalidParams, "缺少视频文件", "source path is empty", nil)
	}
	info, err := os.Stat(sub.SourcePath)
	if err != nil {
		return sub, apperrors.Wrap(apperrors.CodeFileNotFound, "视频文件不存在", err)
	}
	if info.IsDir() {
		return sub, apperrors.New(apperrors.CodeInvalidParams, fmt.Sprintf("%s 不是文件", sub.SourcePath))
	}
	if strings.TrimSpace(sub.RunId) == "" {
		sub.RunId = NewRunId()
	}

	s.persist(&types.Run{Submission: sub, Status: appcore.RunStatusPending}, appcore.StageProbe, "")
	return sub, nil
}
