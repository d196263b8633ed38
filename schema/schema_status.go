package schema

import "time"

// RunStoreStatus represents the status of the run history store.
type RunStoreStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     string           `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalCommits  int              `json:"total_commits"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// SchedulerStatus is the automation view of a repository.
type SchedulerStatus struct {
	IsConfigured     bool      `json:"isConfigured" yaml:"is_configured"`
	LastPush         time.Time `json:"lastPush,omitzero" yaml:"last_push,omitempty"`
	LastRunTime      time.Time `json:"lastRunTime,omitzero" yaml:"last_run_time,omitempty"`
	TotalRuns        int       `json:"totalRuns" yaml:"total_runs"`
	NextRunDue       bool      `json:"nextRunDue" yaml:"next_run_due"`
	NextPush         time.Time `json:"nextPush,omitzero" yaml:"next_push,omitempty"`
	NextRunTime      time.Time `json:"nextRunTime,omitzero" yaml:"next_run_time,omitempty"`
	RemoteConfigured bool      `json:"remoteConfigured" yaml:"remote_configured"`
}

// CommitStats counts commits over rolling windows.
type CommitStats struct {
	Today  int `json:"today" yaml:"today"`
	Week   int `json:"week" yaml:"week"`
	Month  int `json:"month" yaml:"month"`
	Total  int `json:"total" yaml:"total"`
	Streak int `json:"streak" yaml:"streak"`
}

// ActivityEntry is one line of recent commit activity.
type ActivityEntry struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
	Time    string `json:"time"`
	Type    string `json:"type"`
}

// CommandResult is what a named command reports back to the caller.
type CommandResult struct {
	Command string           `json:"command"`
	Message string           `json:"message"`
	Commits int              `json:"commits"`
	Outcome *RunOutcome      `json:"outcome,omitempty"`
	Status  *SchedulerStatus `json:"status,omitempty"`
}

// HistoryView bundles everything the stats command renders for a repository.
type HistoryView struct {
	Stats    CommitStats     `json:"stats" yaml:"stats"`
	Report   Report          `json:"report" yaml:"report"`
	Activity []ActivityEntry `json:"activity,omitempty" yaml:"activity,omitempty"`
}
