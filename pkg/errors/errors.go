// Package errors provides coded errors shared by the pipeline stages and the
// HTTP layer.
package errors

import (
	"context"
	"errors"
	"fmt"
)

const (
	// General (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002
	CodeRunNotFound   = 1003

	// Media stages (1100-1199)
	CodeProbeFailed     = 1100
	CodeSnapshotFailed  = 1101
	CodeClipSynthFailed = 1102
	CodeSegmentFailed   = 1103
	CodeMergeSkipped    = 1104
	CodeMergeFailed     = 1105
	CodeNormalizeFailed = 1106
	CodeCoverFailed     = 1107
	CodeToolTimeout     = 1108

	// Restyle (1200-1299)
	CodeRestyleFailed      = 1200
	CodeRestyleBadResponse = 1201
	CodeRestyleFetchFailed = 1202

	// Publish (1300-1399)
	CodeUploadFailed  = 1300
	CodeMetadataError = 1301

	// Storage (1500-1599)
	CodeDBError        = 1500
	CodeFileNotFound   = 1501
	CodeFileWriteError = 1502
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError with the same code, so the sentinels below work
// with errors.Is whatever message or cause a wrap carries.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code int, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Detail: detail, Cause: cause}
}

// Is reports whether err carries an AppError with the given code anywhere in
// its chain.
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode returns CodeUnknown for errors that are not AppErrors.
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// IsFatal marks the codes that abort a run instead of skipping an item.
func IsFatal(err error) bool {
	return Is(err, CodeProbeFailed)
}

// Retryable is false for errors another attempt cannot fix: a cancelled or
// expired context, bad input, a missing file or a fatal media error.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch GetCode(err) {
	case CodeInvalidParams, CodeFileNotFound, CodeProbeFailed:
		return false
	}
	return true
}

var (
	ErrInvalidParams = New(CodeInvalidParams, "参数错误 Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "资源不存在 Resource not found")
	ErrRunNotFound   = New(CodeRunNotFound, "任务不存在 Run not found")

	ErrProbeFailed  = New(CodeProbeFailed, "媒体探测失败 Media probe failed")
	ErrMergeSkipped = New(CodeMergeSkipped, "素材不足，跳过合成 Merge skipped")
	ErrMergeFailed  = New(CodeMergeFailed, "视频合成失败 Merge failed")
	ErrToolTimeout  = New(CodeToolTimeout, "ffmpeg 执行超时 ffmpeg timed out")

	ErrRestyleFailed      = New(CodeRestyleFailed, "图片风格化失败 Restyle failed")
	ErrRestyleBadResponse = New(CodeRestyleBadResponse, "风格化服务返回异常 Restyle bad response")

	ErrUploadFailed  = New(CodeUploadFailed, "上传失败 Upload failed")
	ErrMetadataError = New(CodeMetadataError, "元数据写入失败 Metadata insert failed")

	ErrDBError      = New(CodeDBError, "数据库错误 Database error")
	ErrFileNotFound = New(CodeFileNotFound, "文件不存在 File not found")
)
