package schema

import "time"

// RunRecord represents a row from the cadence_runs table.
type RunRecord struct {
	RunID         string
	Command       string
	RepoPath      string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalEvents   int32
	Successful    int32
	Skipped       int32
	FailedFatal   int32
	PushState     *string
	ConfigParams  *string
}

// RunEventRecord represents a row from the cadence_run_events table.
type RunEventRecord struct {
	RunID     string
	Seq       int32
	EventTime time.Time
	Message   string
	Outcome   EventOutcome
	Detail    *string
}
