package git

import (
	"context"
	"fmt"
)

// RefExists checks if a ref exists in a local repository.
// Returns true if the ref exists, false if it doesn't, or an error if the check fails.
func RefExists(ctx context.Context, dir, ref string) (bool, error) {
	_, err := Run(ctx, []string{"rev-parse", "--verify", "--quiet", ref}, &RunOptions{Dir: dir})
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check ref %q: %w", ref, err)
	}
	return true, nil
}

// ResolveRef resolves a ref to its commit SHA in a local repository.
// Tags are peeled to the commit they point at.
func ResolveRef(ctx context.Context, dir, ref string) (string, error) {
	sha, err := Run(ctx, []string{"rev-parse", "--verify", ref + "^{commit}"}, &RunOptions{Dir: dir})
	if err != nil {
		if IsNotFound(err) {
			return "", &ErrRefNotFound{Ref: ref}
		}
		return "", fmt.Errorf("failed to resolve ref %q: %w", ref, err)
	}
	return sha, nil
}

// RemoteRefExists checks if a ref exists in a remote repository without fetching.
// This uses git ls-remote which only transfers ref information, not content.
func RemoteRefExists(ctx context.Context, url, ref string) (bool, error) {
	// git ls-remote --exit-code returns exit code 2 if ref not found
	_, err := Run(ctx, []string{"ls-remote", "--exit-code", url, ref}, nil)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check remote ref %q in %q: %w", ref, url, err)
	}
	return true, nil
}

// ListRemoteRefs lists all refs in a remote repository.
// If patterns are provided, only matching refs are returned.
func ListRemoteRefs(ctx context.Context, url string, patterns ...string) (map[string]string, error) {
	args := []string{"ls-remote", url}
	args = append(args, patterns...)

	out, err := Run(ctx, args, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote refs: %w", err)
	}

	refs := make(map[string]string)
	if out == "" {
		return refs, nil
	}

	// Parse lines: "sha\trefs/..."
	lines := splitLines(out)
	for _, line := range lines {
		var sha, ref string
		if _, err := fmt.Sscanf(line, "%s %s", &sha, &ref); err == nil {
			refs[ref] = sha
		}
	}

	return refs, nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
