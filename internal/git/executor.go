package git

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

// RunOptions configures how a git command is executed.
type RunOptions struct {
	// Dir is the working directory for the command.
	// If empty, the current working directory is used.
	Dir string

	// Env contains additional environment variables.
	// These are appended to the current environment.
	Env []string

	// Timeout bounds the command's execution time.
	// Zero means no timeout beyond the parent context.
	Timeout time.Duration
}

// Available returns true if git is installed and in PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Run executes a git command and returns the stdout output.
// If the command fails, a *GitError is returned with stderr context.
// If opts.Timeout elapses before the command completes, the command is
// killed and the returned *GitError has TimedOut set.
func Run(ctx context.Context, args []string, opts *RunOptions) (string, error) {
	if !Available() {
		return "", ErrGitNotFound
	}

	if opts != nil && opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Set working directory if specified
	if opts != nil && opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	// Inherit environment for credentials, SSH config, etc.
	cmd.Env = os.Environ()
	if opts != nil && len(opts.Env) > 0 {
		cmd.Env = append(cmd.Env, opts.Env...)
	}

	err := cmd.Run()
	if err != nil {
		exitCode := 1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return "", &GitError{
			Command:  args,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			TimedOut: ctx.Err() == context.DeadlineExceeded,
		}
	}

	return strings.TrimSpace(stdout.String()), nil
}

// RunSilent executes a git command without capturing output.
// It returns an error if the command fails.
func RunSilent(ctx context.Context, args []string, opts *RunOptions) error {
	_, err := Run(ctx, args, opts)
	return err
}
