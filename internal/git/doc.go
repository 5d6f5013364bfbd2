// Package git provides a safe wrapper around git command execution.
//
// This package delegates all git operations to the system git binary,
// leveraging the user's existing git configuration for authentication.
// It does not implement any platform-specific code (GitHub, GitLab, etc.)
// and does not store or manage credentials.
//
// Key features:
//   - Command execution with proper stderr capture for error diagnostics
//   - Per-command timeouts so a hung network call cannot stall the caller
//   - Git version detection and validation (minimum: 2.5)
//   - Ref existence checking for local and remote repositories
//   - Repository state detection (git root, control directory)
//   - Structured error types with actionable messages
//
// Example usage:
//
//	// Check if git is available
//	if !git.Available() {
//	    return git.ErrGitNotFound
//	}
//
//	// Resolve a ref to a commit SHA
//	sha, err := git.ResolveRef(ctx, "/path/to/repo", "v1.0.0")
//
//	// Fetch with a bounded timeout
//	_, err := git.Run(ctx, []string{"fetch", "origin"}, &git.RunOptions{
//	    Dir:     "/path/to/repo",
//	    Timeout: 2 * time.Minute,
//	})
package git
