package sink

import (
	"context"
	"testing"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const repo = "/tmp/cadence-repo"

// newMockSink returns a sink with a recording sleep func.
func newMockSink(client *contract.MockGitClient, sleeps *[]time.Duration) *GitSink {
	return New(client, repo, Options{
		PushRetries: 3,
		PushBackoff: 5 * time.Second,
		Sleep: func(_ context.Context, d time.Duration) error {
			*sleeps = append(*sleeps, d)
			return nil
		},
	})
}

func gitFailure(output string) error {
	return contract.NewGitError("push", nil, output, contract.ErrGitOperationFailed)
}

func TestPush_NoRemoteIsSkipped(t *testing.T) {
	client := new(contract.MockGitClient)
	client.On("Run", mock.Anything, repo, "remote").Return([]byte(""), nil).Once()
	var sleeps []time.Duration

	result := newMockSink(client, &sleeps).Push(context.Background(), "main")

	assert.Equal(t, schema.PushSkipped, result.State)
	assert.Equal(t, 0, result.Attempts)
	client.AssertExpectations(t)
}

func TestPush_Success(t *testing.T) {
	client := new(contract.MockGitClient)
	client.On("Run", mock.Anything, repo, "remote").Return([]byte("origin\n"), nil).Once()
	client.On("RunWithEnv", mock.Anything, repo, []string{"GIT_TERMINAL_PROMPT=0"}, "push", "origin", "main").
		Return([]byte(""), nil).Once()
	var sleeps []time.Duration

	result := newMockSink(client, &sleeps).Push(context.Background(), "main")

	assert.Equal(t, schema.PushPushed, result.State)
	assert.Equal(t, 1, result.Attempts)
	assert.Empty(t, sleeps)
	client.AssertExpectations(t)
}

func TestPush_NoUpstreamRetriesWithSetUpstream(t *testing.T) {
	client := new(contract.MockGitClient)
	client.On("Run", mock.Anything, repo, "remote").Return([]byte("origin\n"), nil).Once()
	client.On("RunWithEnv", mock.Anything, repo, mock.Anything, "push", "origin", "main").
		Return(nil, gitFailure("fatal: The current branch main has no upstream branch.")).Once()
	client.On("RunWithEnv", mock.Anything, repo, mock.Anything, "push", "--set-upstream", "origin", "main").
		Return([]byte(""), nil).Once()
	var sleeps []time.Duration

	result := newMockSink(client, &sleeps).Push(context.Background(), "main")

	assert.Equal(t, schema.PushPushed, result.State)
	assert.Equal(t, 2, result.Attempts)
	assert.Empty(t, sleeps)
	client.AssertExpectations(t)
}

func TestPush_NetworkFailureRetriesThenFails(t *testing.T) {
	client := new(contract.MockGitClient)
	client.On("Run", mock.Anything, repo, "remote").Return([]byte("origin\n"), nil).Once()
	client.On("RunWithEnv", mock.Anything, repo, mock.Anything, "push", "origin", "main").
		Return(nil, gitFailure("fatal: unable to access 'https://github.com/u/r.git/': Could not resolve host: github.com")).Times(4)
	var sleeps []time.Duration

	result := newMockSink(client, &sleeps).Push(context.Background(), "main")

	assert.Equal(t, schema.PushFailed, result.State)
	assert.Equal(t, 4, result.Attempts)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second}, sleeps)
	assert.Contains(t, result.Reason, "Could not resolve host")
	client.AssertExpectations(t)
}

func TestPush_NetworkFailureRecovers(t *testing.T) {
	client := new(contract.MockGitClient)
	client.On("Run", mock.Anything, repo, "remote").Return([]byte("origin\n"), nil).Once()
	client.On("RunWithEnv", mock.Anything, repo, mock.Anything, "push", "origin", "main").
		Return(nil, gitFailure("fatal: the remote end hung up unexpectedly")).Once()
	client.On("RunWithEnv", mock.Anything, repo, mock.Anything, "push", "origin", "main").
		Return([]byte(""), nil).Once()
	var sleeps []time.Duration

	result := newMockSink(client, &sleeps).Push(context.Background(), "main")

	assert.Equal(t, schema.PushPushed, result.State)
	assert.Equal(t, 2, result.Attempts)
	assert.Len(t, sleeps, 1)
}

func TestPush_RejectedFailsWithoutRetry(t *testing.T) {
	client := new(contract.MockGitClient)
	client.On("Run", mock.Anything, repo, "remote").Return([]byte("origin\n"), nil).Once()
	client.On("RunWithEnv", mock.Anything, repo, mock.Anything, "push", "origin", "main").
		Return(nil, gitFailure(" ! [rejected]        main -> main (non-fast-forward)\nerror: failed to push some refs")).Once()
	var sleeps []time.Duration

	result := newMockSink(client, &sleeps).Push(context.Background(), "main")

	assert.Equal(t, schema.PushFailed, result.State)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, "error: failed to push some refs", result.Reason)
	assert.Empty(t, sleeps)
	client.AssertExpectations(t)
}

func TestPush_CancelledContextStopsRetries(t *testing.T) {
	client := new(contract.MockGitClient)
	client.On("Run", mock.Anything, repo, "remote").Return([]byte("origin\n"), nil).Once()
	client.On("RunWithEnv", mock.Anything, repo, mock.Anything, "push", "origin", "main").
		Return(nil, gitFailure("Could not resolve host: github.com")).Once()

	ctx, cancel := context.WithCancel(context.Background())
	s := New(client, repo, Options{
		PushRetries: 3,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	})

	result := s.Push(ctx, "main")

	assert.Equal(t, schema.PushFailed, result.State)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, context.Canceled.Error(), result.Reason)
}
