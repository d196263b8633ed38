package core

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/huangsam/cadence/core/fabricate"
	"github.com/huangsam/cadence/internal/schedule"
	"github.com/huangsam/cadence/schema"
)

// Bonus thresholds for the automation roll. A roll at or above the last one adds nothing.
const (
	bonusMicroBelow = 0.3
	bonusDocsBelow  = 0.5
	bonusTestsBelow = 0.7
)

// AutomationResult reports what a gated automation run did.
type AutomationResult struct {
	Due      bool               `json:"due"`
	NextPush time.Time          `json:"next_push,omitzero"`
	Daily    *schema.RunOutcome `json:"daily,omitempty"`
	Bonus    string             `json:"bonus,omitempty"`
	Extra    *schema.RunOutcome `json:"extra,omitempty"`
}

// Commits returns the number of commits across the daily and bonus runs.
func (r AutomationResult) Commits() int {
	n := 0
	if r.Daily != nil {
		n += r.Daily.Successful
	}
	if r.Extra != nil {
		n += r.Extra.Successful
	}
	return n
}

// RunAutomation runs the daily set with a push when the schedule gate is
// open, then maybe one bonus set. It does nothing before the gate opens.
func RunAutomation(ctx context.Context, rc *RunContext, opts CommandOptions) (AutomationResult, error) {
	now := rc.now()
	if !rc.Schedule.ShouldRun(now) {
		res := AutomationResult{Due: false}
		if state, ok, err := rc.Schedule.Load(); err == nil && ok {
			res.NextPush = state.LastPush.Add(schedule.PushInterval)
		}
		rc.logger().Info("automation not due", "next_push", res.NextPush)
		return res, nil
	}

	rng := opts.rand()
	opts.Rand = rng
	daily, err := ForcePush(ctx, rc, opts)
	res := AutomationResult{Due: true, Daily: &daily}
	if err != nil {
		return res, err
	}

	roll := rng.Float64()
	switch {
	case roll < bonusMicroBelow:
		res.Bonus = fabricate.TaskMicro
	case roll < bonusDocsBelow:
		res.Bonus = fabricate.TaskDocs
	case roll < bonusTestsBelow:
		res.Bonus = fabricate.TaskTests
	default:
		return res, nil
	}
	rc.logger().Info("adding bonus commits", "set", res.Bonus)
	opts.Batch.Push = true
	opts.Batch.SkipScheduleRecord = true
	extra, err := RunTaskSet(ctx, rc, res.Bonus, "", opts)
	res.Extra = &extra
	return res, err
}

// ForcePush runs the daily set and pushes, ignoring the schedule gate. The
// schedule file is updated once after the push attempt, whatever its state.
func ForcePush(ctx context.Context, rc *RunContext, opts CommandOptions) (schema.RunOutcome, error) {
	opts.Batch.Push = true
	opts.Batch.SkipScheduleRecord = true
	outcome, err := RunTaskSet(ctx, rc, fabricate.TaskDaily, "", opts)
	if outcome.Push != nil {
		if rerr := rc.Schedule.RecordPush(rc.now()); rerr != nil {
			rc.logger().Warn("failed to update schedule file", "error", rerr)
		}
	}
	return outcome, err
}

// RunTaskSet commits one of the built-in task sets.
func RunTaskSet(ctx context.Context, rc *RunContext, name, featureName string, opts CommandOptions) (schema.RunOutcome, error) {
	set, err := fabricate.NewTaskSet(name, rc.RepoPath, featureName, opts.rand())
	if err != nil {
		return schema.RunOutcome{}, err
	}
	batch := opts.Batch
	batch.Command = name
	return RunBatch(ctx, rc, set.Events(rc.now()), set, batch)
}

func (o CommandOptions) rand() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
