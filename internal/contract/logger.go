package contract

import (
	"io"
	"log/slog"
)

// NewLogger returns the structured logger used for operational events.
// Verbose mode shows per-event debug lines; otherwise only warnings and errors.
func NewLogger(verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
