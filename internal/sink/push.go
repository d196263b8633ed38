package sink

import (
	"context"
	"errors"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

// Push publishes branch to origin.
//
// A repository without remotes is skipped. A missing upstream is retried once
// with --set-upstream. Network and authentication failures are retried up to
// PushRetries times with PushBackoff between attempts. Anything else fails.
func (s *GitSink) Push(ctx context.Context, branch string) schema.PushResult {
	result := schema.PushResult{Branch: branch}

	hasRemote, err := s.RemoteConfigured(ctx)
	if err != nil {
		result.State = schema.PushFailed
		result.Reason = summarizeOutput(contract.GitOutput(err))
		return result
	}
	if !hasRemote {
		result.State = schema.PushSkipped
		result.Reason = contract.ErrNoRemote.Error()
		return result
	}

	args := []string{"push", "origin", branch}
	upstreamTried := false
	retries := 0
	for {
		result.Attempts++
		s.opts.Logger.Debug("push attempt", "branch", branch, "attempt", result.Attempts)
		err := s.pushOnce(ctx, args)
		if err == nil {
			result.State = schema.PushPushed
			result.Reason = ""
			return result
		}
		output := contract.GitOutput(err)
		result.Reason = summarizeOutput(output)

		if ctx.Err() != nil {
			result.State = schema.PushFailed
			result.Reason = ctx.Err().Error()
			return result
		}
		if !upstreamTried && containsAny(output, noUpstreamMarkers) {
			upstreamTried = true
			args = []string{"push", "--set-upstream", "origin", branch}
			continue
		}
		if retries < s.opts.PushRetries && isTransient(err, output) {
			retries++
			s.opts.Logger.Warn("push failed, retrying", "branch", branch, "retry", retries, "reason", result.Reason)
			if sleepErr := s.opts.Sleep(ctx, s.opts.PushBackoff); sleepErr != nil {
				result.State = schema.PushFailed
				result.Reason = sleepErr.Error()
				return result
			}
			continue
		}
		result.State = schema.PushFailed
		return result
	}
}

func (s *GitSink) pushOnce(ctx context.Context, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.PushTimeout)
	defer cancel()
	_, err := s.client.RunWithEnv(ctx, s.repoPath, []string{"GIT_TERMINAL_PROMPT=0"}, args...)
	return err
}

func isTransient(err error, output string) bool {
	return errors.Is(err, context.DeadlineExceeded) || containsAny(output, networkMarkers)
}
