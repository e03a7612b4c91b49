package handler

import (
	"funny-video/internal/types"
)

type SubmissionPreparer interface {
	PrepareSubmission(sub types.Submission) (types.Submission, error)
}

type RunReader interface {
	GetRun(runId string) (*types.RunRecord, error)
	GetRunHistory(userId string, limit int) ([]types.RunRecord, error)
}

type Handler struct {
	Service   SubmissionPreparer
	Runs      RunReader
	Submitter types.RunSubmitter
}

func NewHandler(svc SubmissionPreparer, runs RunReader, submitter types.RunSubmitter) Handler {
	return Handler{Service: svc, Runs: runs, Submitter: submitter}
}
