package git

import (
	"context"
	"path/filepath"
)

// FindGitRoot finds the root directory of the git repository containing dir.
// Returns the path to the repository root, or an error if dir is not in a git repository.
func FindGitRoot(ctx context.Context, dir string) (string, error) {
	// Resolve to absolute path
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	// Use git rev-parse to find the root
	root, err := Run(ctx, []string{"rev-parse", "--show-toplevel"}, &RunOptions{Dir: absDir})
	if err != nil {
		return "", &ErrNotARepository{Dir: dir}
	}

	return root, nil
}

// IsGitRepository returns true if dir is inside a git repository.
func IsGitRepository(ctx context.Context, dir string) bool {
	_, err := FindGitRoot(ctx, dir)
	return err == nil
}

// GitDir returns the path to the git control directory (.git) for a repository.
func GitDir(ctx context.Context, dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	// git rev-parse --git-dir returns the path to .git
	gitDir, err := Run(ctx, []string{"rev-parse", "--git-dir"}, &RunOptions{Dir: absDir})
	if err != nil {
		return "", &ErrNotARepository{Dir: dir}
	}

	// If the result is relative, make it absolute
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(absDir, gitDir)
	}

	return gitDir, nil
}

// GetCurrentBranch returns the current branch name, or empty string if in detached HEAD state.
func GetCurrentBranch(ctx context.Context, dir string) (string, error) {
	branch, err := Run(ctx, []string{"rev-parse", "--abbrev-ref", "HEAD"}, &RunOptions{Dir: dir})
	if err != nil {
		return "", err
	}

	// HEAD is returned for detached HEAD state
	if branch == "HEAD" {
		return "", nil
	}

	return branch, nil
}

// GetHEAD returns the current HEAD commit SHA.
func GetHEAD(ctx context.Context, dir string) (string, error) {
	return Run(ctx, []string{"rev-parse", "HEAD"}, &RunOptions{Dir: dir})
}
