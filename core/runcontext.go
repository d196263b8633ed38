package core

import (
	"log/slog"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/schedule"
	"github.com/huangsam/cadence/internal/sink"
)

// RunContext carries the collaborators of a run. Nothing here is global, so
// two runs against different repositories can coexist in one process.
type RunContext struct {
	RepoPath string
	Sink     contract.CommitSink
	Schedule contract.ScheduleStore
	Recorder contract.RunStore // optional
	Logger   *slog.Logger
	Now      func() time.Time
}

// NewRunContext wires the git sink and schedule file for cfg.
func NewRunContext(cfg *contract.Config, client contract.GitClient, recorder contract.RunStore, logger *slog.Logger) *RunContext {
	if logger == nil {
		logger = contract.DiscardLogger()
	}
	return &RunContext{
		RepoPath: cfg.RepoPath,
		Sink:     sink.New(client, cfg.RepoPath, sink.OptionsFromConfig(cfg, logger)),
		Schedule: schedule.NewStore(cfg.SchedulePath()),
		Recorder: recorder,
		Logger:   logger,
		Now:      time.Now,
	}
}

func (rc *RunContext) now() time.Time {
	if rc.Now == nil {
		return time.Now()
	}
	return rc.Now()
}

func (rc *RunContext) logger() *slog.Logger {
	if rc.Logger == nil {
		return contract.DiscardLogger()
	}
	return rc.Logger
}
