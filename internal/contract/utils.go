package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/cadence/schema"
)

// Color variables for console output.
var (
	SuccessColor = color.New(color.FgGreen, color.Bold) // SuccessColor marks landed commits and pushes.
	WarnColor    = color.New(color.FgYellow)            // WarnColor marks skips, not bold.
	FailColor    = color.New(color.FgRed, color.Bold)   // FailColor marks fatal outcomes.
	InfoColor    = color.New(color.FgCyan)              // InfoColor marks informational values.
)

// GetPushLabel returns a plain text label for a push state.
func GetPushLabel(state schema.PushState) string {
	switch state {
	case schema.PushPushed:
		return "Pushed"
	case schema.PushSkipped:
		return "Skipped"
	case schema.PushFailed:
		return "Failed"
	default:
		return "Not attempted"
	}
}

// GetColorPushLabel returns a colored push label for console output.
func GetColorPushLabel(state schema.PushState) string {
	text := GetPushLabel(state)
	switch state {
	case schema.PushPushed:
		return SuccessColor.Sprint(text)
	case schema.PushSkipped:
		return WarnColor.Sprint(text)
	case schema.PushFailed:
		return FailColor.Sprint(text)
	default:
		return InfoColor.Sprint(text)
	}
}

// GetColorBool renders a yes/no value for console output.
func GetColorBool(v bool) string {
	if v {
		return SuccessColor.Sprint("yes")
	}
	return WarnColor.Sprint("no")
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetRunDBFilePath returns the path to the SQLite DB file for run history.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".cadence_runs.db"
	}
	return filepath.Join(homeDir, ".cadence_runs.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the "..." and one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// ParseIntOr parses s as an integer, returning def for anything unparseable.
// An explicit "0" is honored.
func ParseIntOr(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

// ParseFloatOr parses s as a float, returning def for anything unparseable.
func ParseFloatOr(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}

// ParseBoolOr parses s with ParseBoolString, returning def for anything unparseable.
func ParseBoolOr(s string, def bool) bool {
	v, err := ParseBoolString(s)
	if err != nil {
		return def
	}
	return v
}

// SleepContext waits for d or until ctx is done, whichever comes first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
