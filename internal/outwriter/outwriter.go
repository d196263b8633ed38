// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the command layer.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints an activity report using the configured output format.
func (ow *OutWriter) WriteReport(report schema.Report, cfg *contract.Config) error {
	return PrintReport(report, cfg)
}

// WriteHistory prints commit statistics with the history report.
func (ow *OutWriter) WriteHistory(view schema.HistoryView, cfg *contract.Config) error {
	return PrintHistory(view, cfg)
}

// WriteStatus prints the scheduler status.
func (ow *OutWriter) WriteStatus(status schema.SchedulerStatus, cfg *contract.Config) error {
	return PrintStatus(status, cfg)
}

// WriteOutcome prints the summary of a finished run.
func (ow *OutWriter) WriteOutcome(outcome schema.RunOutcome, cfg *contract.Config, duration time.Duration) error {
	return PrintOutcome(outcome, cfg, duration)
}

// WriteEvents prints planned events, used by dry runs.
func (ow *OutWriter) WriteEvents(events []schema.ActivityEvent, cfg *contract.Config) error {
	return PrintEvents(events, cfg)
}

// WritePush prints the terminal state of the push protocol.
func (ow *OutWriter) WritePush(result schema.PushResult, cfg *contract.Config) error {
	return PrintPush(result, cfg)
}
