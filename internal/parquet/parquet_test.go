package parquet

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/cadence/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRuns() []schema.RunRecord {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	duration := int32(90000)
	pushed := string(schema.PushPushed)
	params := `{"frequency":80,"days_back":365}`
	return []schema.RunRecord{
		{
			RunID:         "7f9c2a52-1111-4d1e-9a8e-3b0d5e6f7a81",
			Command:       "batch",
			RepoPath:      "/tmp/repo",
			StartTime:     start,
			EndTime:       &end,
			RunDurationMs: &duration,
			TotalEvents:   12,
			Successful:    11,
			Skipped:       1,
			PushState:     &pushed,
			ConfigParams:  &params,
		},
		{
			// still running: nullable fields left empty
			RunID:       "7f9c2a52-2222-4d1e-9a8e-3b0d5e6f7a81",
			Command:     "auto",
			RepoPath:    "/tmp/repo",
			StartTime:   start.Add(time.Hour),
			TotalEvents: 2,
		},
	}
}

func TestRunStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Run))
	require.NotNil(t, s)

	for _, colName := range []string{
		"run_id", "command", "repo_path", "start_time", "end_time", "run_duration_ms",
		"total_events", "successful", "skipped", "failed_fatal", "push_state", "config_params",
	} {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col)
	}
}

func TestRunEventStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(RunEvent))
	for _, colName := range []string{"run_id", "seq", "event_time", "message", "outcome", "detail"} {
		_, ok := s.Lookup(colName)
		assert.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestWriteRunsParquet_RoundTrip(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	runs := ConvertRunRecords(sampleRuns())

	require.NoError(t, WriteRunsParquet(runs, outputPath))
	assert.FileExists(t, outputPath)

	got, err := parquet.ReadFile[Run](outputPath)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "batch", got[0].Command)
	assert.Equal(t, int32(11), got[0].Successful)
	require.NotNil(t, got[0].PushState)
	assert.Equal(t, "pushed", *got[0].PushState)
	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].PushState)
}

func TestWriteRunEventsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "events.parquet")
	detail := "nothing to commit"
	events := ConvertRunEventRecords([]schema.RunEventRecord{
		{RunID: "a", Seq: 0, EventTime: time.Now(), Message: "docs: update readme", Outcome: schema.EventCommitted},
		{RunID: "a", Seq: 1, EventTime: time.Now(), Message: "chore: tidy", Outcome: schema.EventSkipped, Detail: &detail},
	})
	assert.Equal(t, "skipped", events[1].Outcome)

	require.NoError(t, WriteRunEventsParquet(events, outputPath))
	got, err := parquet.ReadFile[RunEvent](outputPath)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int32(1), got[1].Seq)
	require.NotNil(t, got[1].Detail)
	assert.Equal(t, detail, *got[1].Detail)
}

func TestWriteRunsParquet_BadPath(t *testing.T) {
	err := WriteRunsParquet(nil, filepath.Join(t.TempDir(), "missing", "runs.parquet"))
	assert.Error(t, err)
}

func TestConvertEmpty(t *testing.T) {
	assert.Empty(t, ConvertRunRecords(nil))
	assert.Empty(t, ConvertRunEventRecords(nil))
}
