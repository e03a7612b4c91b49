package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"funny-video/internal/appcore"
	"funny-video/internal/mocks"
	"funny-video/internal/types"
	apperrors "funny-video/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recordingRunStore keeps every saved record so tests can inspect progress.
func recordingRunStore() (*mocks.MockRunStore, func() []types.RunRecord) {
	var (
		mu      sync.Mutex
		records []types.RunRecord
	)
	store := new(mocks.MockRunStore)
	store.On("SaveRun", mock.Anything).Run(func(args mock.Arguments) {
		mu.Lock()
		defer mu.Unlock()
		records = append(records, *args.Get(0).(*types.RunRecord))
	}).Return(nil)
	return store, func() []types.RunRecord {
		mu.Lock()
		defer mu.Unlock()
		return append([]types.RunRecord(nil), records...)
	}
}

func newSubmission(t *testing.T, root string) types.Submission {
	t.Helper()
	return types.Submission{
		RunId:      "run-1",
		UserId:     "u1",
		Title:      "Cat",
		SourcePath: writeFile(t, filepath.Join(root, "uploads", "cat.mp4"), "video"),
		Moments:    "8, 2,5",
	}
}

func states(outcomes []appcore.Outcome) map[appcore.Stage]appcore.OutcomeState {
	m := make(map[appcore.Stage]appcore.OutcomeState, len(outcomes))
	for _, o := range outcomes {
		m[o.Stage] = o.State
	}
	return m
}

func TestRunPipelineCompletes(t *testing.T) {
	root := useTempAppDirs(t)
	sub := newSubmission(t, root)
	bgm := writeFile(t, filepath.Join(root, "bgm.mp3"), "bgm")

	restyler := new(mocks.MockRestyler)
	restyler.On("Restyle", mock.Anything, mock.Anything, "doodle").Return([]byte("styled"), nil)
	uploader := new(mocks.MockUploader)
	uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("https://cdn.example.com/x", nil)
	videos := new(mocks.MockVideoRepository)
	videos.On("InsertVideo", mock.Anything, mock.Anything).Return(nil)
	runs, saved := recordingRunStore()

	runner := &fakeRunner{probeOutput: sampleProbeOutput}
	s := &Service{
		Runner:   runner,
		Restyler: restyler,
		Uploader: uploader,
		Videos:   videos,
		Runs:     runs,
		Options:  Options{ClipDuration: 3, BgmPath: bgm, Parallelism: 2, Prompt: "doodle", UploadAttempts: 1},
	}

	run, err := s.RunPipeline(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, appcore.RunStatusCompleted, run.Status)
	require.Len(t, run.Outcomes, len(appcore.Stages))
	for i, o := range run.Outcomes {
		assert.Equal(t, appcore.Stages[i], o.Stage)
		assert.Equal(t, appcore.OutcomeSucceeded, o.State, o.String())
	}
	assert.Equal(t, []int{2, 5, 8}, run.Timestamps)
	assert.Equal(t, filepath.Join(run.Dirs.Root, "cat_new.mp4"), run.InputPath)
	assert.Equal(t, filepath.Join(root, "output", "runs", sub.RunId), run.Dirs.Root)
	assert.Len(t, run.Snapshots, 3)
	assert.Len(t, run.StyledImages, 3)
	assert.Len(t, run.Clips, 3)
	assert.Len(t, run.Segments, 4)
	require.NotNil(t, run.Merge)
	assert.Equal(t, filepath.Join(run.Dirs.Result, "merged.mp4"), run.Merge.MergedPath)
	require.NotNil(t, run.Publish)
	assert.Equal(t, "https://cdn.example.com/x", run.Publish.ResultVideoUrl)

	list, err := os.ReadFile(run.Merge.ListPath)
	require.NoError(t, err)
	assert.Equal(t, "file 'segment_1.mp4'\nfile 'funny_2s.mp4'\nfile 'segment_2.mp4'\nfile 'funny_5s.mp4'\n"+
		"file 'segment_3.mp4'\nfile 'funny_8s.mp4'\nfile 'segment_4.mp4'\n", string(list))

	uploader.AssertCalled(t, "Upload", mock.Anything, run.Merge.MergedPath, "u1/run-1/result/merged.mp4", "video/mp4")
	restyler.AssertNumberOfCalls(t, "Restyle", 3)

	records := saved()
	require.NotEmpty(t, records)
	assert.Equal(t, "running", records[0].Status)
	last := records[len(records)-1]
	assert.Equal(t, "completed", last.Status)
	assert.Empty(t, last.CurrentStage)
	assert.Equal(t, "2,5,8", last.Timestamps)
	assert.Equal(t, run.Merge.MergedPath, last.MergedPath)

	var reports []types.StageReport
	require.NoError(t, json.Unmarshal([]byte(last.Outcomes), &reports))
	assert.Len(t, reports, len(appcore.Stages))
	assert.Equal(t, "publish", reports[len(reports)-1].Stage)
}

func TestRunPipelineAbortsOnProbeFailure(t *testing.T) {
	root := useTempAppDirs(t)
	runs, saved := recordingRunStore()
	s := &Service{Runner: &fakeRunner{probeOutput: ""}, Runs: runs}

	run, err := s.RunPipeline(context.Background(), newSubmission(t, root))
	require.NoError(t, err)

	assert.Equal(t, appcore.RunStatusAborted, run.Status)
	require.Len(t, run.Outcomes, 1)
	assert.Equal(t, appcore.OutcomeFatal, run.Outcomes[0].State)
	assert.True(t, apperrors.Is(run.Outcomes[0].Err, apperrors.CodeProbeFailed))
	assert.Nil(t, run.Probe)

	records := saved()
	last := records[len(records)-1]
	assert.Equal(t, "aborted", last.Status)
	assert.Contains(t, last.FailReason, "probe:fatal")
}

func TestRunPipelineAbortsOnUnreadableInput(t *testing.T) {
	root := useTempAppDirs(t)
	runs, _ := recordingRunStore()
	runner := &fakeRunner{probeOutput: "cat.mp4: No such file or directory"}
	s := &Service{Runner: runner, Runs: runs}

	run, err := s.RunPipeline(context.Background(), newSubmission(t, root))
	require.NoError(t, err)

	assert.Equal(t, appcore.RunStatusAborted, run.Status)
	require.Len(t, run.Outcomes, 1)
	assert.Equal(t, appcore.OutcomeFatal, run.Outcomes[0].State)
	assert.Empty(t, runner.callsWriting(".jpg"))
}

func TestRunPipelineWithoutRestylerSkipsMerge(t *testing.T) {
	root := useTempAppDirs(t)
	s := &Service{
		Runner:  &fakeRunner{probeOutput: sampleProbeOutput},
		Options: Options{ClipDuration: 3, Parallelism: 2},
	}

	run, err := s.RunPipeline(context.Background(), newSubmission(t, root))
	require.NoError(t, err)

	assert.Equal(t, appcore.RunStatusCompleted, run.Status)
	got := states(run.Outcomes)
	assert.Equal(t, appcore.OutcomeSucceeded, got[appcore.StageSnapshot])
	assert.Equal(t, appcore.OutcomeSkipped, got[appcore.StageRestyle])
	assert.Equal(t, appcore.OutcomeSkipped, got[appcore.StageSynthesize])
	assert.Equal(t, appcore.OutcomeSucceeded, got[appcore.StageSegment])
	assert.Equal(t, appcore.OutcomeSkipped, got[appcore.StageMerge])
	assert.Equal(t, appcore.OutcomeSkipped, got[appcore.StagePublish])
	assert.Nil(t, run.Merge)
	assert.Len(t, run.Segments, 4)
}

func TestRunPipelineWithNoValidMoments(t *testing.T) {
	root := useTempAppDirs(t)
	sub := newSubmission(t, root)
	sub.Moments = "500, 0"
	s := &Service{Runner: &fakeRunner{probeOutput: sampleProbeOutput}, Options: Options{Parallelism: 1}}

	run, err := s.RunPipeline(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, appcore.RunStatusCompleted, run.Status)
	plan := run.Outcome(appcore.StagePlan)
	assert.Equal(t, appcore.OutcomeSkipped, plan.State)
	assert.Len(t, plan.Warnings, 2)
	assert.Len(t, run.Segments, 1)
	assert.Equal(t, appcore.OutcomeSkipped, run.Outcome(appcore.StageMerge).State)
}

func TestRunPipelineCancelled(t *testing.T) {
	root := useTempAppDirs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &Service{Runner: &fakeRunner{probeOutput: sampleProbeOutput}}

	run, err := s.RunPipeline(ctx, newSubmission(t, root))
	require.NoError(t, err)

	assert.Equal(t, appcore.RunStatusFailed, run.Status)
	require.Len(t, run.Outcomes, 2)
	assert.Equal(t, appcore.OutcomeSucceeded, run.Outcomes[0].State)
	assert.Equal(t, appcore.StagePlan, run.Outcomes[1].Stage)
	assert.ErrorIs(t, run.Outcomes[1].Err, context.Canceled)
}

func TestRunPipelineRejectsEmptyRunId(t *testing.T) {
	useTempAppDirs(t)
	s := &Service{Runner: &fakeRunner{}}

	run, err := s.RunPipeline(context.Background(), types.Submission{SourcePath: "cat.mp4"})
	require.Error(t, err)
	assert.Equal(t, appcore.RunStatusFailed, run.Status)
}

func TestStageReports(t *testing.T) {
	reports := StageReports([]appcore.Outcome{
		appcore.Succeeded(appcore.StageProbe, "transcode failed"),
		appcore.Skipped(appcore.StageMerge, "no clips"),
	})
	require.Len(t, reports, 2)
	assert.Equal(t, "probe", reports[0].Stage)
	assert.Equal(t, "succeeded", reports[0].State)
	assert.Equal(t, []string{"transcode failed"}, reports[0].Warnings)
	assert.NotZero(t, reports[0].FinishedAt)
	assert.Equal(t, "merge", reports[1].Stage)
	assert.Equal(t, "no clips", reports[1].Reason)
}
