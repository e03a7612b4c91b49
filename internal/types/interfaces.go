package types

import "context"

// CommandRunner runs an external tool with an argument list. The combined
// output is returned even when the command exits non-zero.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Restyler sends one image to an image editing service and returns the bytes
// of the restyled image.
type Restyler interface {
	Restyle(ctx context.Context, imagePath string, prompt string) ([]byte, error)
}

// ObjectUploader stores a local file under key and returns its public URL.
type ObjectUploader interface {
	Upload(ctx context.Context, localPath string, key string, contentType string) (string, error)
}

// VideoRepository persists the published reel metadata.
type VideoRepository interface {
	InsertVideo(ctx context.Context, video *VideoRecord) error
}

// RunStore persists run progress so it can be polled.
type RunStore interface {
	SaveRun(record *RunRecord) error
	GetRun(runId string) (*RunRecord, error)
}

// Pipeline runs one submission to completion.
type Pipeline interface {
	RunPipeline(ctx context.Context, sub Submission) (*Run, error)
}

// RunSubmitter hands a prepared submission to a background worker.
type RunSubmitter interface {
	SubmitRun(sub Submission) error
}
