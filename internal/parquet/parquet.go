// Package parquet exports cadence run history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/cadence/schema"
	"github.com/parquet-go/parquet-go"
)

// Run is one scheduler run. It maps to the cadence_runs table.
type Run struct {
	// RunID is the UUID assigned when the run began
	RunID string `parquet:"run_id,snappy"`

	// Command names the entry point that started the run (batch, auto, push...)
	Command string `parquet:"command,snappy"`

	// RepoPath is the target repository
	RepoPath string `parquet:"repo_path,snappy"`

	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is only set once the run has ended
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalEvents int32 `parquet:"total_events,snappy"`
	Successful  int32 `parquet:"successful,snappy"`
	Skipped     int32 `parquet:"skipped,snappy"`
	FailedFatal int32 `parquet:"failed_fatal,snappy"`

	// PushState is pushed, skipped or failed; null when no push was attempted
	PushState *string `parquet:"push_state,optional,snappy"`

	// ConfigParams contains the JSON-encoded pattern parameters
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RunEvent is the outcome of one scheduled commit. It maps to the cadence_run_events table.
type RunEvent struct {
	RunID     string    `parquet:"run_id,snappy"`
	Seq       int32     `parquet:"seq,snappy"`
	EventTime time.Time `parquet:"event_time,snappy"`
	Message   string    `parquet:"message,snappy"`

	// Outcome is committed, skipped or failed
	Outcome string `parquet:"outcome,snappy"`

	// Detail carries the commit failure reason when there is one
	Detail *string `parquet:"detail,optional,snappy"`
}

// writeParquet writes rows to outputPath with a schema inferred from T.
func writeParquet[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteRunsParquet writes runs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRunEventsParquet writes run events to a Parquet file.
func WriteRunEventsParquet(data []RunEvent, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord rows for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			Command:       record.Command,
			RepoPath:      record.RepoPath,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalEvents:   record.TotalEvents,
			Successful:    record.Successful,
			Skipped:       record.Skipped,
			FailedFatal:   record.FailedFatal,
			PushState:     record.PushState,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertRunEventRecords converts schema.RunEventRecord rows for Parquet export.
func ConvertRunEventRecords(records []schema.RunEventRecord) []RunEvent {
	result := make([]RunEvent, len(records))
	for i, record := range records {
		result[i] = RunEvent{
			RunID:     record.RunID,
			Seq:       record.Seq,
			EventTime: record.EventTime,
			Message:   record.Message,
			Outcome:   string(record.Outcome),
			Detail:    record.Detail,
		}
	}
	return result
}
