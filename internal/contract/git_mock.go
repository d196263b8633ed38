package contract

import (
	"context"
	"time"

	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// RunWithEnv implements the GitClient interface.
func (m *MockGitClient) RunWithEnv(ctx context.Context, repoPath string, env []string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, repoPath, env}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// GetGitDir implements the GitClient interface.
func (m *MockGitClient) GetGitDir(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetCommitTimes implements the GitClient interface.
func (m *MockGitClient) GetCommitTimes(ctx context.Context, repoPath string, since time.Time) ([]time.Time, error) {
	ret := m.Called(ctx, repoPath, since)
	times, _ := ret.Get(0).([]time.Time)
	return times, ret.Error(1)
}

// GetRecentCommits implements the GitClient interface.
func (m *MockGitClient) GetRecentCommits(ctx context.Context, repoPath string, n int) ([]schema.ActivityEntry, error) {
	ret := m.Called(ctx, repoPath, n)
	entries, _ := ret.Get(0).([]schema.ActivityEntry)
	return entries, ret.Error(1)
}
