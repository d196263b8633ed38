package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// PrintStatus outputs the scheduler status, dispatching based on the output format configured.
func PrintStatus(status schema.SchedulerStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON status")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, status)
		}, "Wrote YAML status")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatusCSV(w, status)
		}, "Wrote CSV status")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			writeStatusText(w, status)
			return nil
		}, "Wrote status")
	}
}

// humanTime renders t as a timestamp plus a humanized offset, or "never" when zero.
func humanTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return fmt.Sprintf("%s (%s)", t.Format(contract.DateTimeFormat), humanize.Time(t))
}

func writeStatusText(w io.Writer, status schema.SchedulerStatus) {
	_, _ = fmt.Fprintln(w, "🗓️  Schedule Status")
	_, _ = fmt.Fprintf(w, "Configured: %s\n", contract.GetColorBool(status.IsConfigured))
	_, _ = fmt.Fprintf(w, "Remote: %s\n", contract.GetColorBool(status.RemoteConfigured))
	_, _ = fmt.Fprintf(w, "Last push: %s\n", humanTime(status.LastPush))
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Run due: %s\n", contract.GetColorBool(status.NextRunDue))
	if !status.NextPush.IsZero() {
		_, _ = fmt.Fprintf(w, "Gate opens: %s\n", humanTime(status.NextPush))
	}
	if !status.NextRunTime.IsZero() {
		_, _ = fmt.Fprintf(w, "Next scheduled run: %s\n", contract.InfoColor.Sprint(humanTime(status.NextRunTime)))
	}
}

func writeStatusCSV(w io.Writer, status schema.SchedulerStatus) error {
	return writeCSVWithHeader(w, []string{"key", "value"}, func(cw *csv.Writer) error {
		rows := [][]string{
			{"is_configured", strconv.FormatBool(status.IsConfigured)},
			{"remote_configured", strconv.FormatBool(status.RemoteConfigured)},
			{"last_push", formatTime(status.LastPush, contract.DateTimeFormat)},
			{"last_run_time", formatTime(status.LastRunTime, contract.DateTimeFormat)},
			{"total_runs", strconv.Itoa(status.TotalRuns)},
			{"next_run_due", strconv.FormatBool(status.NextRunDue)},
			{"next_push", formatTime(status.NextPush, contract.DateTimeFormat)},
			{"next_run_time", formatTime(status.NextRunTime, contract.DateTimeFormat)},
		}
		return cw.WriteAll(rows)
	})
}

// PrintHistory outputs commit statistics together with the history report.
func PrintHistory(view schema.HistoryView, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, view)
		}, "Wrote JSON stats")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, view)
		}, "Wrote YAML stats")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatsCSV(w, view.Stats)
		}, "Wrote CSV stats")
	case schema.HTMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteReportHTML(w, view.Report, "Repository history")
		}, "Wrote HTML stats")
	default:
		fmtFloat, _ := createFormatters(1)
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			writeStatsText(w, view.Stats)
			if err := writeActivityTable(w, view.Activity, GetMaxMessageWidth(cfg)); err != nil {
				return err
			}
			return writeReportText(w, view.Report, fmtFloat)
		}, "Wrote stats")
	}
}

func writeStatsText(w io.Writer, stats schema.CommitStats) {
	_, _ = fmt.Fprintln(w, "📈 Commit Stats")
	_, _ = fmt.Fprintf(w, "Today: %d | Week: %d | Month: %d | Total: %s\n",
		stats.Today, stats.Week, stats.Month, humanize.Comma(int64(stats.Total)))
	_, _ = fmt.Fprintf(w, "Streak: %s\n", contract.SuccessColor.Sprintf("%d days", stats.Streak))
}

func writeStatsCSV(w io.Writer, stats schema.CommitStats) error {
	header := []string{"today", "week", "month", "total", "streak"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		return cw.Write([]string{
			strconv.Itoa(stats.Today),
			strconv.Itoa(stats.Week),
			strconv.Itoa(stats.Month),
			strconv.Itoa(stats.Total),
			strconv.Itoa(stats.Streak),
		})
	})
}
