package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/cadence/schema"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	return c.RunWithEnv(ctx, repoPath, nil, args...)
}

// RunWithEnv executes a git command with extra environment entries.
// Arguments are passed as an argv array, never through a shell.
func (c *LocalGitClient) RunWithEnv(ctx context.Context, repoPath string, env []string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	operation := "command"
	if len(args) > 0 {
		operation = args[0]
	}
	output := strings.TrimSpace(strings.TrimSpace(stdout.String()) + "\n" + strings.TrimSpace(stderr.String()))

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, NewGitError(operation, args, output, fmt.Errorf("%w: %w", ErrGitOperationFailed, ctxErr))
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, NewGitError(operation, args, output,
			fmt.Errorf("%w in %q (exit %d)", ErrGitOperationFailed, repoPath, exitErr.ExitCode()))
	}
	return nil, NewGitError(operation, args, output,
		fmt.Errorf("%w: %v. Ensure Git is installed and available on your PATH", ErrEnvironment, err))
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotGitRepository, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// GetGitDir implements the GitClient interface.
func (c *LocalGitClient) GetGitDir(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "--git-dir")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotGitRepository, err)
	}
	dir := strings.TrimSpace(string(out))
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(repoPath, dir)
	}
	return dir, nil
}

// GetCommitTimes implements the GitClient interface.
func (c *LocalGitClient) GetCommitTimes(ctx context.Context, repoPath string, since time.Time) ([]time.Time, error) {
	args := []string{"log", "--pretty=format:%aI"}
	if !since.IsZero() {
		args = append(args, "--since="+since.Format(DateTimeFormat))
	}
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		if isUnbornHead(err) {
			return nil, nil
		}
		return nil, err
	}

	var times []time.Time
	for line := range strings.SplitSeq(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, line)
		if err != nil {
			return nil, fmt.Errorf("unexpected commit date %q: %w", line, err)
		}
		times = append(times, t)
	}
	return times, nil
}

// GetRecentCommits implements the GitClient interface.
func (c *LocalGitClient) GetRecentCommits(ctx context.Context, repoPath string, n int) ([]schema.ActivityEntry, error) {
	out, err := c.Run(ctx, repoPath, "log", "-n", strconv.Itoa(n), "--pretty=format:%h|%s|%ar")
	if err != nil {
		if isUnbornHead(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []schema.ActivityEntry
	for line := range strings.SplitSeq(strings.TrimSpace(string(out)), "\n") {
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			continue
		}
		entries = append(entries, schema.ActivityEntry{
			Hash:    parts[0],
			Message: parts[1],
			Time:    parts[2],
		})
	}
	return entries, nil
}

// isUnbornHead reports whether a log failed only because there are no commits yet.
func isUnbornHead(err error) bool {
	out := GitOutput(err)
	return strings.Contains(out, "does not have any commits yet") ||
		strings.Contains(out, "bad default revision")
}
