package contract

import (
	"errors"
	"fmt"
)

// Sentinel errors that can be used with errors.Is() for error type checking.
var (
	// ErrEnvironment indicates the repository or runtime cannot be used at all.
	ErrEnvironment = errors.New("environment not usable")

	// ErrNotGitRepository indicates the target path is not a git repository.
	ErrNotGitRepository = errors.New("not a git repository")

	// ErrGitOperationFailed indicates a git command returned an error.
	ErrGitOperationFailed = errors.New("git operation failed")

	// ErrInvalidConfiguration indicates an invalid or conflicting user configuration.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNoRemote indicates the repository has no remote to push to.
	ErrNoRemote = errors.New("no remote configured")

	// ErrCommandNotAllowed indicates a named command outside the allowed set.
	ErrCommandNotAllowed = errors.New("command not allowed")
)

// GitError represents an error that occurred during a Git operation.
// Output holds stdout and stderr together since git reports some
// conditions (like "nothing to commit") on stdout.
type GitError struct {
	Operation string
	Args      []string
	Output    string
	Err       error
}

// Error implements the error interface.
func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Operation)
	if e.Output != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Output)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *GitError) Unwrap() error {
	return e.Err
}

// NewGitError creates a new GitError with the given parameters.
func NewGitError(operation string, args []string, output string, err error) *GitError {
	return &GitError{
		Operation: operation,
		Args:      args,
		Output:    output,
		Err:       err,
	}
}

// GitOutput extracts the captured git output from an error chain, if any.
func GitOutput(err error) string {
	var gitErr *GitError
	if errors.As(err, &gitErr) {
		return gitErr.Output
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
