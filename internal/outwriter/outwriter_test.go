package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() schema.Report {
	return schema.Report{
		Total:          6,
		ActiveDays:     3,
		AveragePerDay:  2,
		BusiestMonth:   schema.PeriodCount{Period: "2025-03", Count: 4},
		BusiestWeekday: schema.PeriodCount{Period: "Monday", Count: 3},
		Months:         []schema.PeriodCount{{Period: "2025-03", Count: 4}, {Period: "2025-04", Count: 2}},
		Weekdays:       []schema.PeriodCount{{Period: "Monday", Count: 3}, {Period: "Tuesday", Count: 3}},
		Days: []schema.PeriodCount{
			{Period: "2025-03-03", Count: 3},
			{Period: "2025-03-04", Count: 1},
			{Period: "2025-04-01", Count: 2},
		},
		First: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC),
		Last:  time.Date(2025, 4, 1, 17, 0, 0, 0, time.UTC),
	}
}

func TestCreateFormatters(t *testing.T) {
	fmtFloat, intFmt := createFormatters(2)
	assert.Equal(t, "3.14", fmtFloat(3.14159))
	assert.Equal(t, "%d", intFmt)

	fmtFloat, _ = createFormatters(0)
	assert.Equal(t, "3", fmtFloat(3.14159))
}

func TestWriteJSONAndYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]any{"name": "test", "value": 42}))
	assert.Equal(t, "{\n  \"name\": \"test\",\n  \"value\": 42\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, writeYAML(&buf, sampleReport()))
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 6, decoded["total"])
	assert.Contains(t, buf.String(), "busiest_month:")
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "-", formatTime(time.Time{}, "2006-01-02"))
	assert.Equal(t, "2025-03-03", formatTime(sampleReport().First, "2006-01-02"))
}

func TestWriteReportText(t *testing.T) {
	fmtFloat, _ := createFormatters(1)
	var buf bytes.Buffer
	require.NoError(t, writeReportText(&buf, sampleReport(), fmtFloat))

	out := buf.String()
	assert.Contains(t, out, "Total: 6 commits over 3 active days (avg 2.0/day)")
	assert.Contains(t, out, "Range: 2025-03-03 to 2025-04-01")
	assert.Contains(t, out, "Busiest month: 2025-03 (4)")
	assert.Contains(t, out, "Busiest weekday: Monday (3)")
	assert.Contains(t, out, "2025-04")
	assert.Contains(t, out, "Tuesday")
}

func TestWriteReportText_Empty(t *testing.T) {
	fmtFloat, _ := createFormatters(1)
	var buf bytes.Buffer
	require.NoError(t, writeReportText(&buf, schema.Report{}, fmtFloat))
	assert.Contains(t, buf.String(), "No activity in range.")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(0, 10))
	assert.Equal(t, "", bar(5, 0))
	assert.Equal(t, strings.Repeat("█", barWidth), bar(10, 10))
	assert.Equal(t, "█", bar(1, 1000), "small counts still get one block")
}

func TestWriteReportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReportCSV(&buf, sampleReport()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1+2+2+3)
	assert.Equal(t, []string{"kind", "period", "count"}, records[0])
	assert.Equal(t, []string{"month", "2025-03", "4"}, records[1])
	assert.Equal(t, []string{"day", "2025-04-01", "2"}, records[7])
}

func TestBuildHeatMapData(t *testing.T) {
	weeks, data, peak := buildHeatMapData(sampleReport().Days)

	// 2025-03-02 is a Sunday; 2025-04-01 falls in the week of 2025-03-30
	require.NotEmpty(t, weeks)
	assert.Equal(t, "2025-03-02", weeks[0])
	assert.Equal(t, "2025-03-30", weeks[len(weeks)-1])
	assert.Equal(t, 3, peak)

	total := 0
	for _, cell := range data {
		total += cell.Value.([]any)[2].(int)
	}
	assert.Equal(t, 6, total)

	// Monday 2025-03-03 is week 0, weekday 1
	assert.Equal(t, []any{0, 1, 3}, data[1].Value)
}

func TestBuildHeatMapData_Empty(t *testing.T) {
	weeks, data, peak := buildHeatMapData([]schema.PeriodCount{{Period: "not-a-date", Count: 2}})
	assert.Nil(t, weeks)
	assert.Nil(t, data)
	assert.Zero(t, peak)
}

func TestWriteReportHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReportHTML(&buf, sampleReport(), "Activity report"))
	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "Activity report")
	assert.Contains(t, out, "Contributions")
	assert.Contains(t, out, "Commits per month")
}

func TestWriteStatusText(t *testing.T) {
	var buf bytes.Buffer
	writeStatusText(&buf, schema.SchedulerStatus{})
	out := buf.String()
	assert.Contains(t, out, "Last push: never")
	assert.NotContains(t, out, "Gate opens")

	buf.Reset()
	last := time.Now().Add(-2 * time.Hour)
	writeStatusText(&buf, schema.SchedulerStatus{
		IsConfigured: true,
		LastPush:     last,
		TotalRuns:    4,
		NextPush:     last.Add(23 * time.Hour),
		NextRunTime:  time.Now().Add(time.Hour),
	})
	out = buf.String()
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "Total runs: 4")
	assert.Contains(t, out, "Gate opens:")
	assert.Contains(t, out, "Next scheduled run:")
}

func TestWriteStatusCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStatusCSV(&buf, schema.SchedulerStatus{TotalRuns: 2, NextRunDue: true}))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Contains(t, records, []string{"total_runs", "2"})
	assert.Contains(t, records, []string{"next_run_due", "true"})
	assert.Contains(t, records, []string{"last_push", "-"})
}

func TestWriteStatsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStatsCSV(&buf, schema.CommitStats{Today: 1, Week: 5, Month: 20, Total: 300, Streak: 4}))
	assert.Equal(t, "today,week,month,total,streak\n1,5,20,300,4\n", buf.String())
}

func TestWriteOutcomeText(t *testing.T) {
	var buf bytes.Buffer
	writeOutcomeText(&buf, schema.RunOutcome{
		RunID: "abc", Total: 10, Processed: 10, Successful: 8, Skipped: 2, FailedFatal: 1,
		Push: &schema.PushResult{State: schema.PushFailed, Branch: "main", Reason: "network", Attempts: 4},
	}, 1500*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "Processed 10/10 events in 1.5s")
	assert.Contains(t, out, "Committed: 8")
	assert.Contains(t, out, "Failed (main) after 4 attempts: network")
	assert.Contains(t, out, "Run ID: abc")
}

func TestWriteOutcomeCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeOutcomeCSV(&buf, schema.RunOutcome{Total: 3, Processed: 2, Successful: 2, Cancelled: true}))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"", "3", "2", "2", "0", "0", "true", "", ""}, records[1])
}

func TestWritePushText(t *testing.T) {
	var buf bytes.Buffer
	writePushText(&buf, schema.PushResult{State: schema.PushSkipped, Reason: "no remote configured"})
	assert.Contains(t, buf.String(), "Skipped: no remote configured")
}

func TestWriteEvents(t *testing.T) {
	events := []schema.ActivityEvent{
		{Timestamp: time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC), Message: "feat: add a rather long message that should be truncated"},
		{Timestamp: time.Date(2025, 1, 3, 11, 0, 0, 0, time.UTC), Message: "fix: typo"},
	}

	var buf bytes.Buffer
	require.NoError(t, writeEventsTable(&buf, events, 20))
	assert.Contains(t, buf.String(), "feat: add a rathe...")
	assert.Contains(t, buf.String(), "2 events planned")

	buf.Reset()
	require.NoError(t, writeEventsCSV(&buf, events))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-03T11:00:00Z", "fix: typo"}, records[2])
}

func TestWriteActivityTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeActivityTable(&buf, nil, 40))
	assert.Empty(t, buf.String())

	require.NoError(t, writeActivityTable(&buf, []schema.ActivityEntry{
		{Hash: "a1b2c3d", Message: "docs: update readme", Time: "2 hours ago", Type: "docs"},
	}, 40))
	assert.Contains(t, buf.String(), "a1b2c3d")
}

func TestGetMaxMessageWidth(t *testing.T) {
	assert.Equal(t, 20, GetMaxMessageWidth(&contract.Config{Width: 50}))
	assert.Equal(t, 80, GetMaxMessageWidth(&contract.Config{Width: 120}))
	assert.Equal(t, 100, GetMaxMessageWidth(&contract.Config{Width: 400}))
}

func TestPrintReport_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path}
	require.NoError(t, NewOutWriter().WriteReport(sampleReport(), cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded schema.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sampleReport().Months, decoded.Months)
}

func TestPrintHistory_HTMLToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.html")
	cfg := &contract.Config{Output: schema.HTMLOut, OutputFile: path}
	view := schema.HistoryView{Stats: schema.CommitStats{Total: 6}, Report: sampleReport()}
	require.NoError(t, NewOutWriter().WriteHistory(view, cfg))
	assert.FileExists(t, path)
}

func TestPrintOutcome_YAMLToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outcome.yaml")
	cfg := &contract.Config{Output: schema.YAMLOut, OutputFile: path}
	require.NoError(t, NewOutWriter().WriteOutcome(schema.RunOutcome{Total: 1, Processed: 1, Successful: 1}, cfg, time.Second))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "successful: 1")
}
