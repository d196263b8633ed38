package sink

import (
	"strings"

	"github.com/huangsam/cadence/schema"
)

var (
	nothingToCommitMarkers = []string{
		"nothing to commit",
		"nothing added to commit",
		"no changes added to commit",
	}
	missingIdentityMarkers = []string{
		"please tell me who you are",
		"author identity unknown",
		"unable to auto-detect email address",
		"empty ident name",
	}
	lockContentionMarkers = []string{
		"index.lock",
		"another git process seems to be running",
		"file exists",
	}
	noUpstreamMarkers = []string{
		"no upstream",
		"has no upstream branch",
	}
	networkMarkers = []string{
		"could not resolve host",
		"could not read from remote repository",
		"connection timed out",
		"connection refused",
		"connection reset",
		"operation timed out",
		"network is unreachable",
		"unable to access",
		"authentication failed",
		"permission denied",
		"the remote end hung up unexpectedly",
		"early eof",
		"rpc failed",
		"tls",
		"ssl",
	}
)

func containsAny(output string, markers []string) bool {
	lower := strings.ToLower(output)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ClassifyCommitOutput maps the text of a failed stage or commit to a CommitKind.
func ClassifyCommitOutput(output string) schema.CommitKind {
	switch {
	case containsAny(output, nothingToCommitMarkers):
		return schema.CommitNothingToCommit
	case containsAny(output, missingIdentityMarkers):
		return schema.CommitMissingIdentity
	case containsAny(output, lockContentionMarkers):
		return schema.CommitLockContention
	default:
		return schema.CommitOther
	}
}

// SanitizeMessage prepares a commit message for argv: NUL bytes are dropped and
// surrounding whitespace trimmed. Everything else, quotes included, is kept.
func SanitizeMessage(message string) string {
	msg := strings.TrimSpace(strings.ReplaceAll(message, "\x00", ""))
	if msg == "" {
		return "chore: update"
	}
	return msg
}

// summarizeOutput returns the last non-empty line of git output.
func summarizeOutput(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "unknown error"
}
