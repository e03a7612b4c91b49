package types

import "funny-video/internal/appcore"

// Submission is everything a caller hands over to start a run.
type Submission struct {
	RunId       string `json:"run_id"`
	UserId      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SourcePath  string `json:"source_path"`
	Moments     string `json:"moments"`
}

type Snapshot struct {
	Timestamp int    `json:"timestamp"`
	Path      string `json:"path"`
}

// StyledImage keeps the timestamp of the snapshot it was produced from, so
// clips never have to recover it from a file name.
type StyledImage struct {
	Timestamp int    `json:"timestamp"`
	Path      string `json:"path"`
}

type Clip struct {
	Timestamp int    `json:"timestamp"`
	Path      string `json:"path"`
}

// Segment spans [Start, End) seconds of the source. End is -1 for the last,
// open-ended segment.
type Segment struct {
	Index int    `json:"index"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Path  string `json:"path"`
}

func (s Segment) OpenEnded() bool {
	return s.End < 0
}

type MergeResult struct {
	ListPath   string `json:"list_path"`
	MergedPath string `json:"merged_path"`
	WithBgm    bool   `json:"with_bgm"`
}

type PublishResult struct {
	CoverPath      string `json:"cover_path"`
	FirstImageUrl  string `json:"first_image_url"`
	ResultVideoUrl string `json:"result_video_url"`
	Duration       string `json:"duration"`
}

// RunDirs is the on-disk layout owned by one run.
type RunDirs struct {
	Root      string
	Snapshots string
	Funnies   string
	Result    string
}

// Run is the read-only view of a finished (or aborted) pipeline execution,
// assembled by the orchestrator from the values each stage returned.
type Run struct {
	Submission
	Dirs         RunDirs
	InputPath    string
	Probe        *MediaProbeReport
	Timestamps   []int
	Snapshots    []Snapshot
	StyledImages []StyledImage
	Clips        []Clip
	Segments     []Segment
	Merge        *MergeResult
	Publish      *PublishResult
	Outcomes     []appcore.Outcome
	Status       appcore.RunStatus
}

// Outcome returns the recorded outcome of a stage, pending if it never ran.
func (r *Run) Outcome(stage appcore.Stage) appcore.Outcome {
	for _, o := range r.Outcomes {
		if o.Stage == stage {
			return o
		}
	}
	return appcore.Outcome{Stage: stage, State: appcore.OutcomePending}
}

// StageReport is the serialisable form of a stage outcome, stored with the run
// record and returned by the status endpoint.
type StageReport struct {
	Stage      string   `json:"stage"`
	State      string   `json:"state"`
	Reason     string   `json:"reason,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	FinishedAt int64    `json:"finished_at,omitempty"`
}
