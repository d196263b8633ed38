// Package sink is the commit sink adapter: it turns fabricated events into
// dated git commits and pushes them.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// DefaultBranch is used for fresh repositories and detached heads.
const DefaultBranch = "main"

// Options tunes a GitSink. Zero values fall back to the contract defaults.
type Options struct {
	IdentityName  string
	IdentityEmail string
	CommitTimeout time.Duration
	PushTimeout   time.Duration
	PushRetries   int
	PushBackoff   time.Duration
	Logger        *slog.Logger

	// Sleep waits between push retries. Tests replace it to avoid real delays.
	Sleep func(ctx context.Context, d time.Duration) error

	// Now is the clock used for lock ages.
	Now func() time.Time
}

// OptionsFromConfig builds sink options from a processed configuration.
func OptionsFromConfig(cfg *contract.Config, logger *slog.Logger) Options {
	return Options{
		IdentityName:  cfg.IdentityName,
		IdentityEmail: cfg.IdentityEmail,
		CommitTimeout: cfg.CommitTimeout,
		PushTimeout:   cfg.PushTimeout,
		PushRetries:   cfg.PushRetries,
		PushBackoff:   cfg.PushBackoff,
		Logger:        logger,
	}
}

// GitSink implements contract.CommitSink on top of a GitClient.
type GitSink struct {
	client   contract.GitClient
	repoPath string
	opts     Options
	gitDir   string
}

var _ contract.CommitSink = &GitSink{} // Compile-time check

// New creates a sink for the repository at repoPath.
func New(client contract.GitClient, repoPath string, opts Options) *GitSink {
	if opts.IdentityName == "" {
		opts.IdentityName = contract.DefaultIdentityName
	}
	if opts.IdentityEmail == "" {
		opts.IdentityEmail = contract.DefaultIdentityEmail
	}
	if opts.CommitTimeout <= 0 {
		opts.CommitTimeout = contract.DefaultCommitTimeout
	}
	if opts.PushTimeout <= 0 {
		opts.PushTimeout = contract.DefaultPushTimeout
	}
	if opts.PushRetries < 0 {
		opts.PushRetries = 0
	}
	if opts.Logger == nil {
		opts.Logger = contract.DiscardLogger()
	}
	if opts.Sleep == nil {
		opts.Sleep = contract.SleepContext
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &GitSink{client: client, repoPath: repoPath, opts: opts}
}

// RepoPath returns the working tree root this sink writes to.
func (s *GitSink) RepoPath() string { return s.repoPath }

// EnsureRepository initializes a repository and a local identity when missing.
func (s *GitSink) EnsureRepository(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.CommitTimeout)
	defer cancel()

	if err := os.MkdirAll(s.repoPath, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", contract.ErrEnvironment, s.repoPath, err)
	}

	gitDir, err := s.client.GetGitDir(ctx, s.repoPath)
	if err != nil {
		s.opts.Logger.Info("initializing repository", "path", s.repoPath)
		if _, initErr := s.client.Run(ctx, s.repoPath, "init", "--initial-branch="+DefaultBranch); initErr != nil {
			// Older git has no --initial-branch.
			if _, initErr = s.client.Run(ctx, s.repoPath, "init"); initErr != nil {
				return fmt.Errorf("%w: git init: %w", contract.ErrEnvironment, initErr)
			}
		}
		if gitDir, err = s.client.GetGitDir(ctx, s.repoPath); err != nil {
			return fmt.Errorf("%w: %w", contract.ErrEnvironment, err)
		}
	}
	s.gitDir = gitDir

	if s.hasConfig(ctx, "user.name") && s.hasConfig(ctx, "user.email") {
		return nil
	}
	if err := s.ConfigureIdentity(ctx); err != nil {
		return fmt.Errorf("%w: %w", contract.ErrEnvironment, err)
	}
	return nil
}

func (s *GitSink) hasConfig(ctx context.Context, key string) bool {
	out, err := s.client.Run(ctx, s.repoPath, "config", key)
	return err == nil && strings.TrimSpace(string(out)) != ""
}

// ConfigureIdentity writes the configured name and email into the local git config.
func (s *GitSink) ConfigureIdentity(ctx context.Context) error {
	if _, err := s.client.Run(ctx, s.repoPath, "config", "user.name", s.opts.IdentityName); err != nil {
		return err
	}
	if _, err := s.client.Run(ctx, s.repoPath, "config", "user.email", s.opts.IdentityEmail); err != nil {
		return err
	}
	s.opts.Logger.Debug("configured identity", "name", s.opts.IdentityName, "email", s.opts.IdentityEmail)
	return nil
}

// HasPendingChanges reports whether git status shows anything to commit.
func (s *GitSink) HasPendingChanges(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.CommitTimeout)
	defer cancel()
	out, err := s.client.Run(ctx, s.repoPath, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// StageAndCommit stages paths (everything when empty) and commits with both
// author and committer dates set to ts.
func (s *GitSink) StageAndCommit(ctx context.Context, paths []string, message string, ts time.Time) schema.CommitResult {
	ctx, cancel := context.WithTimeout(ctx, s.opts.CommitTimeout)
	defer cancel()

	addArgs := []string{"add", "-A"}
	if len(paths) > 0 {
		addArgs = append([]string{"add", "--"}, paths...)
	}
	if _, err := s.client.Run(ctx, s.repoPath, addArgs...); err != nil {
		return schema.CommitResult{Kind: ClassifyCommitOutput(contract.GitOutput(err)), Err: err}
	}

	stamp := ts.Format(time.RFC3339)
	env := []string{"GIT_AUTHOR_DATE=" + stamp, "GIT_COMMITTER_DATE=" + stamp}
	if _, err := s.client.RunWithEnv(ctx, s.repoPath, env, "commit", "-m", SanitizeMessage(message)); err != nil {
		return schema.CommitResult{Kind: ClassifyCommitOutput(contract.GitOutput(err)), Err: err}
	}
	return schema.CommitResult{Kind: schema.CommitOK}
}

func (s *GitSink) lockPath() string {
	gitDir := s.gitDir
	if gitDir == "" {
		gitDir = filepath.Join(s.repoPath, ".git")
	}
	return filepath.Join(gitDir, "index.lock")
}

// LockAge reports how old the index lock is. The bool is false when there is no lock.
func (s *GitSink) LockAge() (time.Duration, bool, error) {
	info, err := os.Stat(s.lockPath())
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return s.opts.Now().Sub(info.ModTime()), true, nil
}

// RemoveLock deletes the index lock. A lock that vanished in the meantime is fine.
//
// Another git process may take the lock between the age check and the removal.
// The caller only removes locks older than the stale threshold, which narrows
// that window without closing it.
func (s *GitSink) RemoveLock() error {
	err := os.Remove(s.lockPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	s.opts.Logger.Warn("removed stale index lock", "path", s.lockPath())
	return nil
}

// CurrentBranch returns the checked out branch. A detached HEAD gets a new
// branch named DefaultBranch.
func (s *GitSink) CurrentBranch(ctx context.Context) (string, error) {
	out, err := s.client.Run(ctx, s.repoPath, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	if branch := strings.TrimSpace(string(out)); branch != "" {
		return branch, nil
	}
	if _, err := s.client.Run(ctx, s.repoPath, "checkout", "-b", DefaultBranch); err != nil {
		return "", err
	}
	return DefaultBranch, nil
}

// RemoteConfigured reports whether the repository has at least one remote.
func (s *GitSink) RemoteConfigured(ctx context.Context) (bool, error) {
	out, err := s.client.Run(ctx, s.repoPath, "remote")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// SetupRemote replaces origin with url after validating it.
func (s *GitSink) SetupRemote(ctx context.Context, url string) error {
	if err := ValidateRemoteURL(url); err != nil {
		return err
	}
	// Removing a missing origin fails, which is expected on first setup.
	_, _ = s.client.Run(ctx, s.repoPath, "remote", "remove", "origin")
	if _, err := s.client.Run(ctx, s.repoPath, "remote", "add", "origin", url); err != nil {
		return err
	}
	s.opts.Logger.Info("configured remote", "url", url)
	return nil
}

// ValidateRemoteURL accepts GitHub remotes that are not the placeholder example.
func ValidateRemoteURL(url string) error {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return fmt.Errorf("%w: remote url is required", contract.ErrInvalidConfiguration)
	case !strings.Contains(url, "github.com"):
		return fmt.Errorf("%w: remote url must point to github.com: %s", contract.ErrInvalidConfiguration, url)
	case strings.Contains(url, "yourusername") || strings.Contains(url, "yourrepo"):
		return fmt.Errorf("%w: replace the placeholder remote url with your own repository", contract.ErrInvalidConfiguration)
	}
	return nil
}
