// Package core plans activity, drives batches through the commit sink and
// runs the named commands shared by the CLI, the dashboard and the MCP server.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/cadence/core/fabricate"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// BatchOptions tunes RunBatch. Zero values take the contract defaults,
// except ChunkPause where zero means no pause.
type BatchOptions struct {
	Command        string
	ChunkSize      int
	ChunkPause     time.Duration
	ProgressEvery  int
	LockStaleAfter time.Duration
	Push           bool

	// SkipScheduleRecord leaves the schedule file alone after the push.
	// Callers that record the run themselves set it.
	SkipScheduleRecord bool

	// Progress receives periodic updates. It runs on the scheduler goroutine.
	Progress func(schema.ProgressUpdate)

	// ConfigParams is stored with the run record.
	ConfigParams map[string]any

	// Sleep waits between chunks. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// BatchOptionsFromConfig copies the scheduler tuning out of cfg.
func BatchOptionsFromConfig(cfg *contract.Config, command string) BatchOptions {
	return BatchOptions{
		Command:        command,
		ChunkSize:      cfg.ChunkSize,
		ChunkPause:     cfg.ChunkPause,
		ProgressEvery:  cfg.ProgressEvery,
		LockStaleAfter: cfg.LockStaleAfter,
		Push:           cfg.Push,
	}
}

func (o BatchOptions) withDefaults() BatchOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = contract.DefaultChunkSize
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = contract.DefaultProgressEvery
	}
	if o.LockStaleAfter <= 0 {
		o.LockStaleAfter = contract.DefaultLockStaleAfter
	}
	if o.Sleep == nil {
		o.Sleep = contract.SleepContext
	}
	return o
}

// eventResult is the fate of one event.
type eventResult struct {
	outcome schema.EventOutcome
	detail  string
}

func committed() eventResult { return eventResult{outcome: schema.EventCommitted} }

func skipped(format string, args ...any) eventResult {
	return eventResult{outcome: schema.EventSkipped, detail: fmt.Sprintf(format, args...)}
}

func failed(format string, args ...any) eventResult {
	return eventResult{outcome: schema.EventFailed, detail: fmt.Sprintf(format, args...)}
}

// RunBatch commits events in order, one at a time.
//
// Per-event failures are absorbed into the outcome. The only errors returned
// are an unusable repository (wrapping contract.ErrEnvironment) and context
// cancellation, which comes back together with the partial outcome.
func RunBatch(ctx context.Context, rc *RunContext, events []schema.ActivityEvent, fab contract.Fabricator, opts BatchOptions) (schema.RunOutcome, error) {
	opts = opts.withDefaults()
	log := rc.logger()
	outcome := schema.RunOutcome{RunID: uuid.NewString(), Total: len(events)}

	if err := rc.Sink.EnsureRepository(ctx); err != nil {
		if errors.Is(err, contract.ErrEnvironment) {
			return outcome, err
		}
		return outcome, fmt.Errorf("%w: %w", contract.ErrEnvironment, err)
	}

	rec := newRunRecorder(rc, outcome.RunID, opts)
	rec.begin(len(events))
	log.Debug("batch started", "run_id", outcome.RunID, "command", opts.Command, "events", len(events))

	for i, ev := range events {
		if err := ctx.Err(); err != nil {
			return rec.cancel(outcome), err
		}
		if i > 0 && i%opts.ChunkSize == 0 {
			log.Debug("chunk complete, pausing", "processed", i, "pause", opts.ChunkPause)
			if err := opts.Sleep(ctx, opts.ChunkPause); err != nil {
				return rec.cancel(outcome), err
			}
		}

		res := processEvent(ctx, rc, fab, i, ev, opts)
		outcome.Processed++
		switch res.outcome {
		case schema.EventCommitted:
			outcome.Successful++
		case schema.EventFailed:
			outcome.Skipped++
			outcome.FailedFatal++
			log.Warn("event failed", "index", i, "message", ev.Message, "detail", res.detail)
		default:
			outcome.Skipped++
			log.Info("event skipped", "index", i, "detail", res.detail)
		}
		rec.event(i, ev, res)

		if opts.Progress != nil && ((i+1)%opts.ProgressEvery == 0 || i == len(events)-1) {
			opts.Progress(schema.ProgressUpdate{
				RunID:       outcome.RunID,
				Index:       i + 1,
				Total:       len(events),
				Successful:  outcome.Successful,
				Skipped:     outcome.Skipped,
				FailedFatal: outcome.FailedFatal,
				Message:     ev.Message,
				Timestamp:   rc.now(),
			})
		}
	}

	if opts.Push {
		push := pushCurrentBranch(ctx, rc, !opts.SkipScheduleRecord)
		outcome.Push = &push
	}

	rec.end(outcome)
	log.Debug("batch finished", "run_id", outcome.RunID, "successful", outcome.Successful, "skipped", outcome.Skipped)
	return outcome, nil
}

// processEvent runs the fabricate, check, commit and recovery steps for one event.
func processEvent(ctx context.Context, rc *RunContext, fab contract.Fabricator, index int, ev schema.ActivityEvent, opts BatchOptions) eventResult {
	mutations, err := fab.Produce(ev.Timestamp, index)
	if err != nil {
		return skipped("fabricate: %v", err)
	}
	paths, err := fabricate.Apply(rc.RepoPath, mutations)
	if err != nil {
		return skipped("apply: %v", err)
	}

	pending, err := rc.Sink.HasPendingChanges(ctx)
	if err != nil {
		return skipped("status: %v", err)
	}
	if !pending {
		return skipped("no pending changes")
	}

	result := rc.Sink.StageAndCommit(ctx, paths, ev.Message, ev.Timestamp)
	if result.OK() {
		return committed()
	}

	switch result.Kind {
	case schema.CommitNothingToCommit:
		return skipped("nothing to commit")

	case schema.CommitMissingIdentity:
		if err := rc.Sink.ConfigureIdentity(ctx); err != nil {
			return failed("configure identity: %v", err)
		}
		if retry := rc.Sink.StageAndCommit(ctx, paths, ev.Message, ev.Timestamp); !retry.OK() {
			return failed("commit after identity repair: %s", retry.Kind)
		}
		return committed()

	case schema.CommitLockContention:
		age, exists, err := rc.Sink.LockAge()
		if err != nil {
			return skipped("inspect lock: %v", err)
		}
		if exists {
			if age < opts.LockStaleAfter {
				return skipped("index locked by another process (%s old)", age.Round(time.Second))
			}
			rc.logger().Warn("removing stale index lock", "age", age.Round(time.Second))
			if err := rc.Sink.RemoveLock(); err != nil {
				return skipped("remove stale lock: %v", err)
			}
		}
		retry := rc.Sink.StageAndCommit(ctx, paths, ev.Message, ev.Timestamp)
		switch {
		case retry.OK():
			return committed()
		case retry.Kind == schema.CommitOther:
			return failed("commit after lock recovery: %v", retry.Err)
		default:
			return skipped("commit after lock recovery: %s", retry.Kind)
		}

	default:
		return failed("commit: %v", result.Err)
	}
}

// pushCurrentBranch pushes the checked out branch. With record set, a landed
// push is recorded in the schedule file.
func pushCurrentBranch(ctx context.Context, rc *RunContext, record bool) schema.PushResult {
	branch, err := rc.Sink.CurrentBranch(ctx)
	if err != nil {
		return schema.PushResult{State: schema.PushFailed, Reason: fmt.Sprintf("resolve branch: %v", err)}
	}
	result := rc.Sink.Push(ctx, branch)
	if record && result.State == schema.PushPushed && rc.Schedule != nil {
		if err := rc.Schedule.RecordPush(rc.now()); err != nil {
			rc.logger().Warn("failed to update schedule file", "error", err)
		}
	}
	rc.logger().Info("push finished", "branch", branch, "state", result.State, "attempts", result.Attempts)
	return result
}

// runRecorder mirrors a run into the optional run store. Store failures are
// logged and never affect the run.
type runRecorder struct {
	rc    *RunContext
	runID string
	opts  BatchOptions
	start time.Time
	ok    bool
}

func newRunRecorder(rc *RunContext, runID string, opts BatchOptions) *runRecorder {
	return &runRecorder{rc: rc, runID: runID, opts: opts, start: rc.now()}
}

func (r *runRecorder) begin(total int) {
	if r.rc.Recorder == nil {
		return
	}
	var params *string
	if len(r.opts.ConfigParams) > 0 {
		if data, err := json.Marshal(r.opts.ConfigParams); err == nil {
			s := string(data)
			params = &s
		}
	}
	err := r.rc.Recorder.BeginRun(schema.RunRecord{
		RunID:        r.runID,
		Command:      r.opts.Command,
		RepoPath:     r.rc.RepoPath,
		StartTime:    r.start,
		TotalEvents:  int32(total),
		ConfigParams: params,
	})
	if err != nil {
		r.rc.logger().Warn("run tracking initialization failed", "error", err)
		return
	}
	r.ok = true
}

func (r *runRecorder) event(index int, ev schema.ActivityEvent, res eventResult) {
	if !r.ok {
		return
	}
	var detail *string
	if res.detail != "" {
		detail = &res.detail
	}
	err := r.rc.Recorder.RecordEvent(schema.RunEventRecord{
		RunID:     r.runID,
		Seq:       int32(index),
		EventTime: ev.Timestamp,
		Message:   ev.Message,
		Outcome:   res.outcome,
		Detail:    detail,
	})
	if err != nil {
		r.rc.logger().Warn("run tracking failed for event", "index", index, "error", err)
	}
}

func (r *runRecorder) end(outcome schema.RunOutcome) {
	if !r.ok {
		return
	}
	if err := r.rc.Recorder.EndRun(r.runID, r.rc.now(), outcome); err != nil {
		r.rc.logger().Warn("failed to finalize run tracking", "error", err)
	}
}

func (r *runRecorder) cancel(outcome schema.RunOutcome) schema.RunOutcome {
	outcome.Cancelled = true
	r.end(outcome)
	r.rc.logger().Warn("batch cancelled", "run_id", outcome.RunID, "processed", outcome.Processed, "total", outcome.Total)
	return outcome
}
