package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/cadence/core/fabricate"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/schedule"
	"github.com/huangsam/cadence/schema"
)

// Named commands that can be executed remotely.
const (
	CommandForcePush = "force-push"
	CommandAuto      = "auto"
	CommandPush      = "push"
	CommandInit      = "init"
	CommandStatus    = "status"
)

// AllowedCommands is the closed set accepted by ExecuteCommand.
var AllowedCommands = []string{
	fabricate.TaskDaily,
	fabricate.TaskMicro,
	fabricate.TaskDocs,
	fabricate.TaskTests,
	fabricate.TaskRefactor,
	fabricate.TaskBugfix,
	CommandForcePush,
	CommandAuto,
	CommandPush,
	CommandInit,
	CommandStatus,
}

// IsAllowedCommand reports whether name is in AllowedCommands.
func IsAllowedCommand(name string) bool {
	return slices.Contains(AllowedCommands, name)
}

// CommandOptions are shared by the named commands.
type CommandOptions struct {
	Batch BatchOptions
	Rand  *rand.Rand
	Cron  string // used by status for the next run time
}

// ExecuteCommand runs one of AllowedCommands and summarizes the result.
func ExecuteCommand(ctx context.Context, rc *RunContext, name string, opts CommandOptions) (schema.CommandResult, error) {
	result := schema.CommandResult{Command: name}
	switch name {
	case fabricate.TaskDaily, fabricate.TaskMicro, fabricate.TaskDocs, fabricate.TaskTests, fabricate.TaskRefactor, fabricate.TaskBugfix:
		outcome, err := RunTaskSet(ctx, rc, name, "", opts)
		if err != nil {
			return result, err
		}
		result.Outcome = &outcome
		result.Commits = outcome.Successful
		result.Message = fmt.Sprintf("%s: %d commits created, %d skipped", name, outcome.Successful, outcome.Skipped)

	case CommandForcePush:
		outcome, err := ForcePush(ctx, rc, opts)
		if err != nil {
			return result, err
		}
		result.Outcome = &outcome
		result.Commits = outcome.Successful
		result.Message = fmt.Sprintf("daily commits created (%d), push %s", outcome.Successful, pushState(outcome.Push))

	case CommandAuto:
		auto, err := RunAutomation(ctx, rc, opts)
		if err != nil {
			return result, err
		}
		result.Outcome = auto.Daily
		result.Commits = auto.Commits()
		switch {
		case !auto.Due:
			result.Message = "already pushed today, next push due in ~24 hours"
		case auto.Bonus != "":
			result.Message = fmt.Sprintf("daily automation ran with bonus %s commits", auto.Bonus)
		default:
			result.Message = "daily automation ran"
		}

	case CommandPush:
		push := PushNow(ctx, rc)
		result.Outcome = &schema.RunOutcome{Push: &push}
		result.Message = "push " + string(push.State)
		if push.Reason != "" {
			result.Message += ": " + push.Reason
		}

	case CommandInit:
		seeded, err := InitRepository(ctx, rc)
		if err != nil {
			return result, err
		}
		result.Commits = seeded.Commits
		result.Message = "repository initialized"
		if len(seeded.Created) > 0 {
			result.Message += ", created " + strings.Join(seeded.Created, ", ")
		}

	case CommandStatus:
		status := Status(ctx, rc, opts.Cron)
		result.Status = &status
		result.Message = "scheduler status"

	default:
		return result, fmt.Errorf("%w: %q (allowed: %s)", contract.ErrCommandNotAllowed, name, strings.Join(AllowedCommands, ", "))
	}
	return result, nil
}

func pushState(push *schema.PushResult) string {
	if push == nil {
		return "not attempted"
	}
	return string(push.State)
}

// PushNow pushes the current branch outside of a batch.
func PushNow(ctx context.Context, rc *RunContext) schema.PushResult {
	return pushCurrentBranch(ctx, rc, true)
}

// SetupRemote replaces origin and runs the push protocol.
func SetupRemote(ctx context.Context, rc *RunContext, url string) (schema.PushResult, error) {
	if err := rc.Sink.EnsureRepository(ctx); err != nil {
		return schema.PushResult{}, err
	}
	if err := rc.Sink.SetupRemote(ctx, url); err != nil {
		return schema.PushResult{}, err
	}
	return pushCurrentBranch(ctx, rc, true), nil
}

// InitResult reports what InitRepository created.
type InitResult struct {
	Created []string `json:"created"`
	Commits int      `json:"commits"`
}

var seedFiles = []struct {
	path    string
	content string
}{
	{"daily-progress.md", "# Daily Progress Log\n"},
	{"todos.md", "# Project TODOs\n"},
	{"CHANGELOG.md", "# Changelog\n"},
}

// InitRepository prepares the repository and commits the seed files it had to create.
func InitRepository(ctx context.Context, rc *RunContext) (InitResult, error) {
	var res InitResult
	if err := rc.Sink.EnsureRepository(ctx); err != nil {
		return res, err
	}

	var mutations []schema.FileMutation
	for _, f := range seedFiles {
		if _, err := os.Stat(filepath.Join(rc.RepoPath, f.path)); errors.Is(err, os.ErrNotExist) {
			mutations = append(mutations, schema.FileMutation{Path: f.path, Content: f.content})
		}
	}
	if len(mutations) == 0 {
		return res, nil
	}
	created, err := fabricate.Apply(rc.RepoPath, mutations)
	res.Created = created
	if err != nil {
		return res, err
	}

	pending, err := rc.Sink.HasPendingChanges(ctx)
	if err != nil || !pending {
		return res, err
	}
	commit := rc.Sink.StageAndCommit(ctx, created, "chore: initialize repository", rc.now())
	switch {
	case commit.OK():
		res.Commits = 1
	case commit.Kind == schema.CommitNothingToCommit:
	default:
		return res, commit.Err
	}
	return res, nil
}

// Status reads the schedule file and remote state. A corrupt schedule file
// is reported as unconfigured.
func Status(ctx context.Context, rc *RunContext, cronExpr string) schema.SchedulerStatus {
	now := rc.now()
	state, ok, err := rc.Schedule.Load()
	if err != nil {
		rc.logger().Warn("schedule file unreadable", "error", err)
	}
	status := schema.SchedulerStatus{
		IsConfigured: ok,
		LastPush:     state.LastPush,
		LastRunTime:  state.LastRunTime,
		TotalRuns:    state.TotalRuns,
		NextRunDue:   rc.Schedule.ShouldRun(now),
	}
	if ok && !state.LastPush.IsZero() {
		status.NextPush = state.LastPush.Add(schedule.PushInterval)
	}
	if cronExpr != "" {
		if next, err := schedule.NextCron(cronExpr, now); err == nil {
			status.NextRunTime = next
		}
	}
	if remote, err := rc.Sink.RemoteConfigured(ctx); err == nil {
		status.RemoteConfigured = remote
	}
	return status
}
