// Package schema has the plain data types shared across cadence.
package schema

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidParameters is returned when pattern parameters break an invariant.
var ErrInvalidParameters = errors.New("invalid pattern parameters")

// ActivityEvent is one planned commit.
type ActivityEvent struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Message   string    `json:"message" yaml:"message"`
}

// PatternParameters drive the activity pattern generator.
type PatternParameters struct {
	DaysBack         int      `json:"days_back"`
	DaysForward      int      `json:"days_forward"`
	Frequency        float64  `json:"frequency"` // percent chance a day is active
	MinCommitsPerDay int      `json:"min_commits_per_day"`
	MaxCommitsPerDay int      `json:"max_commits_per_day"`
	NoWeekends       bool     `json:"no_weekends"`
	CustomMessages   []string `json:"custom_messages,omitempty"`
	BurstChance      float64  `json:"burst_chance"` // probability in [0,1]
	StartHour        int      `json:"start_hour"`
	EndHour          int      `json:"end_hour"` // exclusive
}

// Validate checks the parameter invariants.
func (p PatternParameters) Validate() error {
	switch {
	case p.DaysBack < 0:
		return fmt.Errorf("%w: days back must be >= 0 (received %d)", ErrInvalidParameters, p.DaysBack)
	case p.DaysForward < 0:
		return fmt.Errorf("%w: days forward must be >= 0 (received %d)", ErrInvalidParameters, p.DaysForward)
	case p.Frequency < 0 || p.Frequency > 100:
		return fmt.Errorf("%w: frequency must be between 0 and 100 (received %.1f)", ErrInvalidParameters, p.Frequency)
	case p.MinCommitsPerDay < 1:
		return fmt.Errorf("%w: min commits per day must be >= 1 (received %d)", ErrInvalidParameters, p.MinCommitsPerDay)
	case p.MaxCommitsPerDay < p.MinCommitsPerDay:
		return fmt.Errorf("%w: max commits per day (%d) must be >= min commits per day (%d)", ErrInvalidParameters, p.MaxCommitsPerDay, p.MinCommitsPerDay)
	case p.BurstChance < 0 || p.BurstChance > 1:
		return fmt.Errorf("%w: burst chance must be between 0 and 1 (received %.2f)", ErrInvalidParameters, p.BurstChance)
	case p.StartHour < 0 || p.EndHour > 24 || p.StartHour >= p.EndHour:
		return fmt.Errorf("%w: hour window [%d,%d) must satisfy 0 <= start < end <= 24", ErrInvalidParameters, p.StartHour, p.EndHour)
	}
	return nil
}

// FileMutation is a single working tree change produced by a fabricator.
type FileMutation struct {
	Path    string // relative to the repository root
	Content string
	Append  bool
}

// CommitResult is what the sink reports for one stage-and-commit attempt.
type CommitResult struct {
	Kind CommitKind
	Err  error
}

// OK reports whether the commit landed.
func (r CommitResult) OK() bool {
	return r.Kind == CommitOK
}

// PushResult is the terminal state of the push protocol.
type PushResult struct {
	State    PushState `json:"state" yaml:"state"`
	Branch   string    `json:"branch,omitempty" yaml:"branch,omitempty"`
	Reason   string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	Attempts int       `json:"attempts" yaml:"attempts"`
}

// RunOutcome summarizes one scheduler run.
// Successful + Skipped always equals Processed; FailedFatal is a subset of Skipped.
type RunOutcome struct {
	RunID       string      `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Total       int         `json:"total" yaml:"total"`
	Processed   int         `json:"processed" yaml:"processed"`
	Successful  int         `json:"successful" yaml:"successful"`
	Skipped     int         `json:"skipped" yaml:"skipped"`
	FailedFatal int         `json:"failed_fatal" yaml:"failed_fatal"`
	Cancelled   bool        `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
	Push        *PushResult `json:"push,omitempty" yaml:"push,omitempty"`
}

// ProgressUpdate is emitted periodically while a run is in flight.
type ProgressUpdate struct {
	RunID       string    `json:"run_id,omitempty"`
	Index       int       `json:"index"`
	Total       int       `json:"total"`
	Successful  int       `json:"successful"`
	Skipped     int       `json:"skipped"`
	FailedFatal int       `json:"failed_fatal"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

// ScheduleState is the persisted last-push.json document.
type ScheduleState struct {
	LastPush    time.Time `json:"lastPush"`
	TotalRuns   int       `json:"totalRuns"`
	LastRunTime time.Time `json:"lastRunTime"`
}
