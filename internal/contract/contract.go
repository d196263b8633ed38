// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/cadence/schema"
)

// GitClient defines the git operations cadence relies on.
// This allows the sink and reporting logic to be tested without a real git executable.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command and returns its stdout.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// RunWithEnv executes a git command with extra KEY=VALUE environment entries.
	RunWithEnv(ctx context.Context, repoPath string, env []string, args ...string) ([]byte, error)

	// --- Repository Resolution ---

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetGitDir returns the absolute path of the repository's git directory.
	GetGitDir(ctx context.Context, repoPath string) (string, error)

	// --- History ---

	// GetCommitTimes returns author times of commits reachable from HEAD, newest first.
	// A zero since means the whole history. An unborn HEAD yields no times.
	GetCommitTimes(ctx context.Context, repoPath string, since time.Time) ([]time.Time, error)

	// GetRecentCommits returns the last n commits as hash, subject and relative time.
	GetRecentCommits(ctx context.Context, repoPath string, n int) ([]schema.ActivityEntry, error)
}

// CommitSink is the boundary between scheduling and the version control system.
type CommitSink interface {
	// --- Repository Setup ---

	// EnsureRepository initializes the repository and identity if missing. Idempotent.
	EnsureRepository(ctx context.Context) error

	// ConfigureIdentity sets the local commit identity.
	ConfigureIdentity(ctx context.Context) error

	// --- Commit Path ---

	// HasPendingChanges reports whether the working tree differs from HEAD.
	HasPendingChanges(ctx context.Context) (bool, error)

	// StageAndCommit stages paths and commits them dated at ts.
	StageAndCommit(ctx context.Context, paths []string, message string, ts time.Time) schema.CommitResult

	// LockAge reports the age of the index lock and whether it exists.
	LockAge() (time.Duration, bool, error)

	// RemoveLock deletes the index lock.
	RemoveLock() error

	// --- Remote ---

	// CurrentBranch returns the checked out branch, creating one if HEAD is detached.
	CurrentBranch(ctx context.Context) (string, error)

	// RemoteConfigured reports whether any remote exists.
	RemoteConfigured(ctx context.Context) (bool, error)

	// SetupRemote validates url and makes it the origin remote.
	SetupRemote(ctx context.Context, url string) error

	// Push runs the push protocol for branch.
	Push(ctx context.Context, branch string) schema.PushResult
}

// Fabricator produces the working tree changes for one event.
type Fabricator interface {
	Produce(ts time.Time, index int) ([]schema.FileMutation, error)
}

// ScheduleStore persists the automation gate.
type ScheduleStore interface {
	// Load returns the persisted state and whether one existed.
	Load() (schema.ScheduleState, bool, error)

	// ShouldRun reports whether enough time has passed since the last push.
	ShouldRun(now time.Time) bool

	// RecordPush stores a push at now and bumps the run counter.
	RecordPush(now time.Time) error
}

// StoreManager defines the interface for managing history stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking scheduler runs and their events.
type RunStore interface {
	// BeginRun stores the run header before any event is processed.
	BeginRun(run schema.RunRecord) error

	// RecordEvent stores the outcome of a single event.
	RecordEvent(event schema.RunEventRecord) error

	// EndRun updates the run with completion data.
	EndRun(runID string, endTime time.Time, outcome schema.RunOutcome) error

	// GetStatus returns status information about the run store.
	GetStatus() (schema.RunStoreStatus, error)

	// GetAllRuns retrieves every stored run.
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllEvents retrieves every stored event.
	GetAllEvents() ([]schema.RunEventRecord, error)

	// Close closes the underlying connection.
	Close() error
}
