package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"funny-video/internal/appcore"
	"funny-video/internal/mocks"
	"funny-video/internal/types"
	apperrors "funny-video/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func publishableRun(t *testing.T) *types.Run {
	t.Helper()
	dirs := runDirsAt(filepath.Join(t.TempDir(), "r1"))
	merged := writeFile(t, filepath.Join(dirs.Result, mergedName), "reel")
	return &types.Run{
		Submission: types.Submission{RunId: "r1", UserId: "u1", Title: "Cat", Description: "cat highlights"},
		Dirs:       dirs,
		Merge:      &types.MergeResult{MergedPath: merged},
	}
}

func TestCoverArgs(t *testing.T) {
	assert.Equal(t, []string{"-i", "merged.mp4", "-vframes", "1", "-q:v", "2", "-y", "first_frame.jpg"},
		coverArgs("merged.mp4", "first_frame.jpg"))
}

func TestPublish(t *testing.T) {
	run := publishableRun(t)
	cover := filepath.Join(run.Dirs.Result, coverName)

	uploader := new(mocks.MockUploader)
	uploader.On("Upload", mock.Anything, cover, "u1/r1/result/first_frame.jpg", "image/jpeg").
		Return("https://cdn.example.com/u1/r1/result/first_frame.jpg", nil)
	uploader.On("Upload", mock.Anything, run.Merge.MergedPath, "u1/r1/result/merged.mp4", "video/mp4").
		Return("https://cdn.example.com/u1/r1/result/merged.mp4", nil)

	videos := new(mocks.MockVideoRepository)
	videos.On("InsertVideo", mock.Anything, mock.MatchedBy(func(v *types.VideoRecord) bool {
		return v.UserId == "u1" && v.Title == "Cat" && v.Description == "cat highlights" &&
			v.Duration == "00:01:30.52" &&
			v.FirstImageUrl == "https://cdn.example.com/u1/r1/result/first_frame.jpg" &&
			v.ResultVideoUrl == "https://cdn.example.com/u1/r1/result/merged.mp4" &&
			len(v.UpdateTime) == len(updateTimeLayout)
	})).Return(nil)

	s := &Service{
		Runner:   &fakeRunner{probeOutput: sampleProbeOutput},
		Uploader: uploader,
		Videos:   videos,
		Options:  Options{UploadAttempts: 1},
	}
	result, outcome := s.Publish(context.Background(), run)

	require.Equal(t, appcore.OutcomeSucceeded, outcome.State, outcome.Reason)
	assert.Empty(t, outcome.Warnings)
	assert.Equal(t, &types.PublishResult{
		CoverPath:      cover,
		FirstImageUrl:  "https://cdn.example.com/u1/r1/result/first_frame.jpg",
		ResultVideoUrl: "https://cdn.example.com/u1/r1/result/merged.mp4",
		Duration:       "00:01:30.52",
	}, result)
	uploader.AssertExpectations(t)
	videos.AssertExpectations(t)
}

func TestPublishCoverFailureIsWarning(t *testing.T) {
	run := publishableRun(t)
	uploader := new(mocks.MockUploader)
	uploader.On("Upload", mock.Anything, run.Merge.MergedPath, "u1/r1/result/merged.mp4", "video/mp4").
		Return("published/u1/r1/result/merged.mp4", nil)

	s := &Service{
		Runner:   &fakeRunner{probeOutput: sampleProbeOutput, fail: failWhenWriting(coverName)},
		Uploader: uploader,
		Options:  Options{UploadAttempts: 1},
	}
	result, outcome := s.Publish(context.Background(), run)

	assert.Equal(t, appcore.OutcomeSucceeded, outcome.State)
	assert.Len(t, outcome.Warnings, 2)
	assert.Empty(t, result.FirstImageUrl)
	assert.Equal(t, "published/u1/r1/result/merged.mp4", result.ResultVideoUrl)
	uploader.AssertNumberOfCalls(t, "Upload", 1)
}

func TestPublishUploadFailure(t *testing.T) {
	run := publishableRun(t)
	uploader := new(mocks.MockUploader)
	uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("bucket missing"))
	videos := new(mocks.MockVideoRepository)

	s := &Service{
		Runner:   &fakeRunner{probeOutput: sampleProbeOutput},
		Uploader: uploader,
		Videos:   videos,
		Options:  Options{UploadAttempts: 1},
	}
	_, outcome := s.Publish(context.Background(), run)

	assert.Equal(t, appcore.OutcomeFailed, outcome.State)
	assert.True(t, apperrors.Is(outcome.Err, apperrors.CodeUploadFailed))
	assert.Len(t, outcome.Warnings, 1)
	videos.AssertNotCalled(t, "InsertVideo", mock.Anything, mock.Anything)
}

func TestPublishMetadataFailure(t *testing.T) {
	run := publishableRun(t)
	uploader := new(mocks.MockUploader)
	uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("url", nil)
	videos := new(mocks.MockVideoRepository)
	videos.On("InsertVideo", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	s := &Service{
		Runner:   &fakeRunner{probeOutput: sampleProbeOutput},
		Uploader: uploader,
		Videos:   videos,
		Options:  Options{UploadAttempts: 1},
	}
	result, outcome := s.Publish(context.Background(), run)

	assert.Equal(t, appcore.OutcomeFailed, outcome.State)
	assert.True(t, apperrors.Is(outcome.Err, apperrors.CodeMetadataError))
	assert.Equal(t, "url", result.ResultVideoUrl)
}

func TestPublishSkips(t *testing.T) {
	s := &Service{Runner: &fakeRunner{}, Uploader: new(mocks.MockUploader)}
	_, outcome := s.Publish(context.Background(), &types.Run{})
	assert.Equal(t, appcore.OutcomeSkipped, outcome.State)

	s = &Service{Runner: &fakeRunner{}}
	_, outcome = s.Publish(context.Background(), publishableRun(t))
	assert.Equal(t, appcore.OutcomeSkipped, outcome.State)
}
