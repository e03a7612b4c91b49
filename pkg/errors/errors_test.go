package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := New(CodeProbeFailed, "probe failed")
	assert.Equal(t, "[1100] probe failed", err.Error())

	cause := errors.New("exit status 1")
	withCause := Wrap(CodeSegmentFailed, "segment failed", cause)
	assert.Equal(t, "[1103] segment failed: exit status 1", withCause.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(CodeRestyleFailed, "restyle failed", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("run abc: %w", New(CodeProbeFailed, "no output"))

	assert.True(t, Is(err, CodeProbeFailed))
	assert.False(t, Is(err, CodeMergeFailed))
	assert.False(t, Is(errors.New("plain"), CodeProbeFailed))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(Wrap(CodeProbeFailed, "empty diagnostic output", nil)))
	assert.False(t, IsFatal(New(CodeSnapshotFailed, "frame grab failed")))
	assert.False(t, IsFatal(ErrMergeSkipped))
}

func TestGetCodeAndMessage(t *testing.T) {
	assert.Equal(t, CodeUploadFailed, GetCode(ErrUploadFailed))
	assert.Equal(t, CodeUnknown, GetCode(errors.New("plain")))

	assert.Equal(t, "文件不存在 File not found", GetMessage(ErrFileNotFound))
	assert.Equal(t, "plain message", GetMessage(errors.New("plain message")))
}

func TestWrapWithDetail(t *testing.T) {
	cause := errors.New("bucket missing")
	err := WrapWithDetail(CodeUploadFailed, "upload failed", "key: u1/run/result/merged.mp4", cause)

	assert.Equal(t, CodeUploadFailed, err.Code)
	assert.Equal(t, "upload failed", err.Message)
	assert.Equal(t, "key: u1/run/result/merged.mp4", err.Detail)
	assert.Equal(t, cause, err.Cause)
}

func TestSentinelMatchesByCode(t *testing.T) {
	err := fmt.Errorf("publish: %w", Wrap(CodeUploadFailed, "oss put failed", errors.New("403")))

	assert.True(t, errors.Is(err, ErrUploadFailed))
	assert.False(t, errors.Is(err, ErrMetadataError))
}

func TestRetryable(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain", err: errors.New("connection reset"), want: true},
		{name: "upload", err: Wrap(CodeUploadFailed, "upload failed", nil), want: true},
		{name: "canceled", err: fmt.Errorf("upload: %w", context.Canceled), want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: false},
		{name: "missing file", err: ErrFileNotFound, want: false},
		{name: "invalid params", err: ErrInvalidParams, want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Retryable(tc.err))
		})
	}
}
