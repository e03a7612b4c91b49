// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"funny-video/internal/types"

	"github.com/stretchr/testify/mock"
)

// MockCommandRunner is a mock implementation of types.CommandRunner
type MockCommandRunner struct {
	mock.Mock
}

func (m *MockCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	called := m.Called(ctx, name, args)
	out, _ := called.Get(0).([]byte)
	return out, called.Error(1)
}

// MockRestyler is a mock implementation of types.Restyler
type MockRestyler struct {
	mock.Mock
}

func (m *MockRestyler) Restyle(ctx context.Context, imagePath string, prompt string) ([]byte, error) {
	args := m.Called(ctx, imagePath, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockUploader is a mock implementation of types.ObjectUploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, localPath string, key string, contentType string) (string, error) {
	args := m.Called(ctx, localPath, key, contentType)
	return args.String(0), args.Error(1)
}

// MockVideoRepository is a mock implementation of types.VideoRepository
type MockVideoRepository struct {
	mock.Mock
}

func (m *MockVideoRepository) InsertVideo(ctx context.Context, video *types.VideoRecord) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

// MockRunStore is a mock implementation of types.RunStore
type MockRunStore struct {
	mock.Mock
}

func (m *MockRunStore) SaveRun(record *types.RunRecord) error {
	args := m.Called(record)
	return args.Error(0)
}

func (m *MockRunStore) GetRun(runId string) (*types.RunRecord, error) {
	args := m.Called(runId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RunRecord), args.Error(1)
}

// MockPipeline is a mock implementation of types.Pipeline
type MockPipeline struct {
	mock.Mock
}

func (m *MockPipeline) RunPipeline(ctx context.Context, sub types.Submission) (*types.Run, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Run), args.Error(1)
}

// MockRunSubmitter is a mock implementation of types.RunSubmitter
type MockRunSubmitter struct {
	mock.Mock
}

func (m *MockRunSubmitter) SubmitRun(sub types.Submission) error {
	args := m.Called(sub)
	return args.Error(0)
}
