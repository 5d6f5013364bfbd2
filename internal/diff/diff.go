// Package diff computes the set of changed paths between two revisions.
package diff

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/okvist/refsolve/internal/git"
)

// Change is one changed path tagged with its change kind.
type Change struct {
	Path string     `json:"path"`
	Kind ChangeKind `json:"kind"`
}

// Compute diffs oldRev against newRev in the repository at repoDir and
// returns the changes whose kind is in the given set, ordered lexically
// by path. An empty kind set yields an empty result. Both revisions
// must already resolve; a failure here with resolvable inputs is a
// diff operation error, not a missing-revision error.
func Compute(ctx context.Context, repoDir, oldRev, newRev string, kinds KindSet) ([]Change, error) {
	if len(kinds) == 0 {
		return []Change{}, nil
	}

	out, err := git.Run(ctx, []string{
		"diff", "--name-status",
		oldRev, newRev,
	}, &git.RunOptions{Dir: repoDir})
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s..%s: %w", oldRev, newRev, err)
	}

	changes, err := parseNameStatus(out)
	if err != nil {
		return nil, err
	}

	filtered := make([]Change, 0, len(changes))
	for _, c := range changes {
		if kinds.Has(c.Kind) {
			filtered = append(filtered, c)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Path < filtered[j].Path
	})

	return filtered, nil
}

// parseNameStatus parses `git diff --name-status` output. Each line is
// "STATUS\tpath", or "STATUS\told\tnew" for renames and copies, in
// which case the new path is reported.
func parseNameStatus(out string) ([]Change, error) {
	var changes []Change
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("malformed diff line: %q", line)
		}

		kind, ok := parseStatusLetter(fields[0])
		if !ok {
			continue
		}

		path := fields[1]
		if (kind == KindRenamed || kind == KindCopied) && len(fields) >= 3 {
			path = fields[2]
		}

		changes = append(changes, Change{Path: path, Kind: kind})
	}
	return changes, nil
}
