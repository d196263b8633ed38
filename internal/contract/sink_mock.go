package contract

import (
	"context"
	"time"

	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/mock"
)

// MockCommitSink is a mock implementation of CommitSink for testing.
type MockCommitSink struct {
	mock.Mock
}

var _ CommitSink = &MockCommitSink{} // Compile-time check

// EnsureRepository implements the CommitSink interface.
func (m *MockCommitSink) EnsureRepository(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// ConfigureIdentity implements the CommitSink interface.
func (m *MockCommitSink) ConfigureIdentity(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// HasPendingChanges implements the CommitSink interface.
func (m *MockCommitSink) HasPendingChanges(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// StageAndCommit implements the CommitSink interface.
func (m *MockCommitSink) StageAndCommit(ctx context.Context, paths []string, message string, ts time.Time) schema.CommitResult {
	return m.Called(ctx, paths, message, ts).Get(0).(schema.CommitResult)
}

// LockAge implements the CommitSink interface.
func (m *MockCommitSink) LockAge() (time.Duration, bool, error) {
	args := m.Called()
	return args.Get(0).(time.Duration), args.Bool(1), args.Error(2)
}

// RemoveLock implements the CommitSink interface.
func (m *MockCommitSink) RemoveLock() error {
	return m.Called().Error(0)
}

// CurrentBranch implements the CommitSink interface.
func (m *MockCommitSink) CurrentBranch(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// RemoteConfigured implements the CommitSink interface.
func (m *MockCommitSink) RemoteConfigured(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// Push implements the CommitSink interface.
func (m *MockCommitSink) Push(ctx context.Context, branch string) schema.PushResult {
	return m.Called(ctx, branch).Get(0).(schema.PushResult)
}

// SetupRemote implements the CommitSink interface.
func (m *MockCommitSink) SetupRemote(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}
