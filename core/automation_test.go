package core

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/huangsam/cadence/core/fabricate"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fixedSource makes every Float64 roll return roll.
type fixedSource struct{ v uint64 }

func (s fixedSource) Uint64() uint64 { return s.v }

func rollRand(roll float64) *rand.Rand {
	return rand.New(fixedSource{v: uint64(roll * (1 << 53))})
}

func expectCommits(sink *contract.MockCommitSink, push schema.PushState) {
	sink.On("EnsureRepository", mock.Anything).Return(nil)
	sink.On("HasPendingChanges", mock.Anything).Return(true, nil)
	sink.On("StageAndCommit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(commitOK())
	sink.On("CurrentBranch", mock.Anything).Return("main", nil)
	sink.On("Push", mock.Anything, "main").Return(schema.PushResult{State: push, Branch: "main"})
}

func TestRunAutomation_NotDue(t *testing.T) {
	rc, sink := newMockRunContext(t)
	require.NoError(t, rc.Schedule.RecordPush(testNow.Add(-time.Hour)))

	res, err := RunAutomation(context.Background(), rc, CommandOptions{})
	require.NoError(t, err)
	assert.False(t, res.Due)
	assert.Equal(t, testNow.Add(23*time.Hour), res.NextPush.UTC())
	assert.Nil(t, res.Daily)
	sink.AssertNotCalled(t, "EnsureRepository", mock.Anything)
}

func TestRunAutomation_DailyWithBonus(t *testing.T) {
	tests := []struct {
		roll    float64
		bonus   string
		commits int
		pushes  int
	}{
		{0.1, fabricate.TaskMicro, 6, 2},
		{0.4, fabricate.TaskDocs, 6, 2},
		{0.6, fabricate.TaskTests, 6, 2},
		{0.9, "", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.bonus, func(t *testing.T) {
			rc, sink := newMockRunContext(t)
			expectCommits(sink, schema.PushPushed)

			res, err := RunAutomation(context.Background(), rc, CommandOptions{
				Rand:  rollRand(tt.roll),
				Batch: BatchOptions{Sleep: noSleep},
			})
			require.NoError(t, err)
			assert.True(t, res.Due)
			assert.Equal(t, tt.bonus, res.Bonus)
			assert.Equal(t, tt.commits, res.Commits())
			sink.AssertNumberOfCalls(t, "Push", tt.pushes)

			state, ok, err := rc.Schedule.Load()
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, 1, state.TotalRuns)
			assert.Equal(t, testNow, state.LastPush.UTC())
		})
	}
}

func TestForcePush_SkippedPushStillRecordsRun(t *testing.T) {
	rc, sink := newMockRunContext(t)
	expectCommits(sink, schema.PushSkipped)

	outcome, err := ForcePush(context.Background(), rc, CommandOptions{Batch: BatchOptions{Sleep: noSleep}})
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Successful)
	assert.Equal(t, schema.PushSkipped, outcome.Push.State)

	state, ok, err := rc.Schedule.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, state.TotalRuns)
}

func TestForcePush_FailedPushIsRecorded(t *testing.T) {
	rc, sink := newMockRunContext(t)
	expectCommits(sink, schema.PushFailed)

	outcome, err := ForcePush(context.Background(), rc, CommandOptions{Batch: BatchOptions{Sleep: noSleep}})
	require.NoError(t, err)
	assert.Equal(t, schema.PushFailed, outcome.Push.State)

	state, ok, err := rc.Schedule.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, state.TotalRuns)
	assert.False(t, rc.Schedule.ShouldRun(testNow))
}

func TestRunAutomation_FailedPushClosesGate(t *testing.T) {
	rc, sink := newMockRunContext(t)
	expectCommits(sink, schema.PushFailed)
	opts := CommandOptions{Rand: rollRand(0.9), Batch: BatchOptions{Sleep: noSleep}}

	first, err := RunAutomation(context.Background(), rc, opts)
	require.NoError(t, err)
	assert.True(t, first.Due)
	assert.Equal(t, 2, first.Commits())

	second, err := RunAutomation(context.Background(), rc, opts)
	require.NoError(t, err)
	assert.False(t, second.Due)
	assert.Equal(t, 0, second.Commits())
	sink.AssertNumberOfCalls(t, "Push", 1)
}

func TestRunTaskSet_UnknownSet(t *testing.T) {
	rc, _ := newMockRunContext(t)
	_, err := RunTaskSet(context.Background(), rc, "weekly", "", CommandOptions{})
	assert.ErrorIs(t, err, contract.ErrInvalidConfiguration)
}
