package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
	"github.com/olekukonko/tablewriter"
)

// PrintOutcome outputs the summary of a finished run.
func PrintOutcome(outcome schema.RunOutcome, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, outcome)
		}, "Wrote JSON outcome")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, outcome)
		}, "Wrote YAML outcome")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeOutcomeCSV(w, outcome)
		}, "Wrote CSV outcome")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			writeOutcomeText(w, outcome, duration)
			return nil
		}, "Wrote outcome")
	}
}

func writeOutcomeText(w io.Writer, outcome schema.RunOutcome, duration time.Duration) {
	icon := "✅"
	switch {
	case outcome.Cancelled:
		icon = "🛑"
	case outcome.FailedFatal > 0:
		icon = "⚠️ "
	}
	_, _ = fmt.Fprintf(w, "%s Processed %d/%d events in %v\n", icon, outcome.Processed, outcome.Total, duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "Committed: %s | Skipped: %s | Failed: %s\n",
		contract.SuccessColor.Sprint(outcome.Successful),
		contract.WarnColor.Sprint(outcome.Skipped),
		contract.FailColor.Sprint(outcome.FailedFatal))
	if outcome.Push != nil {
		writePushText(w, *outcome.Push)
	}
	if outcome.RunID != "" {
		_, _ = fmt.Fprintf(w, "Run ID: %s\n", outcome.RunID)
	}
}

func writeOutcomeCSV(w io.Writer, outcome schema.RunOutcome) error {
	header := []string{"run_id", "total", "processed", "successful", "skipped", "failed_fatal", "cancelled", "push_state", "push_reason"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		var pushState, pushReason string
		if outcome.Push != nil {
			pushState = string(outcome.Push.State)
			pushReason = outcome.Push.Reason
		}
		return cw.Write([]string{
			outcome.RunID,
			strconv.Itoa(outcome.Total),
			strconv.Itoa(outcome.Processed),
			strconv.Itoa(outcome.Successful),
			strconv.Itoa(outcome.Skipped),
			strconv.Itoa(outcome.FailedFatal),
			strconv.FormatBool(outcome.Cancelled),
			pushState,
			pushReason,
		})
	})
}

// PrintPush outputs the terminal state of the push protocol.
func PrintPush(result schema.PushResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON push result")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, result)
		}, "Wrote YAML push result")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			writePushText(w, result)
			return nil
		}, "Wrote push result")
	}
}

func writePushText(w io.Writer, result schema.PushResult) {
	line := fmt.Sprintf("🚀 Push: %s", contract.GetColorPushLabel(result.State))
	if result.Branch != "" {
		line += fmt.Sprintf(" (%s)", result.Branch)
	}
	if result.Attempts > 1 {
		line += fmt.Sprintf(" after %d attempts", result.Attempts)
	}
	if result.Reason != "" {
		line += ": " + result.Reason
	}
	_, _ = fmt.Fprintln(w, line)
}

// PrintEvents outputs planned events, used by dry runs.
func PrintEvents(events []schema.ActivityEvent, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, events)
		}, "Wrote JSON events")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, events)
		}, "Wrote YAML events")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEventsCSV(w, events)
		}, "Wrote CSV events")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEventsTable(w, events, GetMaxMessageWidth(cfg))
		}, "Wrote events")
	}
}

func writeEventsTable(w io.Writer, events []schema.ActivityEvent, width int) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Timestamp", "Message"})

	data := make([][]string, 0, len(events))
	for i, ev := range events {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			ev.Timestamp.Format(contract.DateTimeFormat),
			contract.TruncateText(ev.Message, width),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "%d events planned\n", len(events))
	return nil
}

func writeEventsCSV(w io.Writer, events []schema.ActivityEvent) error {
	return writeCSVWithHeader(w, []string{"timestamp", "message"}, func(cw *csv.Writer) error {
		for _, ev := range events {
			if err := cw.Write([]string{ev.Timestamp.Format(contract.DateTimeFormat), ev.Message}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeActivityTable prints recent commits; an empty list prints nothing.
func writeActivityTable(w io.Writer, entries []schema.ActivityEntry, width int) error {
	if len(entries) == 0 {
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Hash", "Type", "When", "Message"})

	data := make([][]string, 0, len(entries))
	for _, e := range entries {
		data = append(data, []string{e.Hash, e.Type, e.Time, contract.TruncateText(e.Message, width)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
