// Package lockfile finds and removes stale git lock files.
//
// Git signals exclusive intent to mutate a ref by creating a sentinel
// .lock file next to it. A crashed or killed git process leaves the
// sentinel behind, and every subsequent ref update fails until someone
// removes it. This package scans the known lock locations, applies a
// staleness policy, and deletes only the artifacts the policy confirms
// are abandoned.
package lockfile

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// LockSuffix is the file name suffix git uses for lock sentinels.
const LockSuffix = ".lock"

// Artifact is a lock file found under a repository's git control directory.
type Artifact struct {
	// Path is the absolute path to the lock file.
	Path string

	// ModTime is the lock file's last modification time, used by
	// age-based staleness policies.
	ModTime time.Time

	// Size is the lock file's size in bytes.
	Size int64
}

// Age returns how old the artifact is relative to now.
func (a Artifact) Age(now time.Time) time.Duration {
	return now.Sub(a.ModTime)
}

// Scan finds lock artifacts under the given git control directory.
// It checks the top-level index lock, the packed-refs lock, and any
// lock file under the heads and remotes ref namespaces. A repository
// with no lock files yields an empty slice and no error.
func Scan(gitDir string) ([]Artifact, error) {
	if _, err := os.Stat(gitDir); err != nil {
		return nil, err
	}

	var artifacts []Artifact

	// Top-level locks: index.lock is left by interrupted worktree
	// operations, packed-refs.lock by interrupted ref repacking.
	for _, name := range []string{"index" + LockSuffix, "packed-refs" + LockSuffix} {
		if a, ok := statArtifact(filepath.Join(gitDir, name)); ok {
			artifacts = append(artifacts, a)
		}
	}

	// Per-ref locks under the heads and remotes namespaces.
	for _, ns := range []string{"heads", "remotes"} {
		root := filepath.Join(gitDir, "refs", ns)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// The namespace directory may not exist at all.
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), LockSuffix) {
				return nil
			}
			if a, ok := statArtifact(path); ok {
				artifacts = append(artifacts, a)
			}
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	return artifacts, nil
}

// statArtifact stats a candidate lock path. A path that disappeared
// between discovery and stat is simply skipped.
func statArtifact(path string) (Artifact, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Artifact{}, false
	}
	return Artifact{
		Path:    path,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}, true
}

// Cleaner removes stale lock artifacts from a git control directory.
type Cleaner struct {
	policy Policy
	logger hclog.Logger
}

// NewCleaner creates a Cleaner with the given staleness policy.
// A nil policy defaults to the age-based policy; a nil logger discards output.
func NewCleaner(policy Policy, logger hclog.Logger) *Cleaner {
	if policy == nil {
		policy = NewAgePolicy(DefaultMinAge, nil)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Cleaner{policy: policy, logger: logger}
}

// Clean scans gitDir and deletes every artifact the policy reports as
// stale. Deletion is best-effort: a lock that cannot be removed is
// logged and skipped, and a lock that vanished before removal counts
// as removed (another process beat us to it). Returns the paths that
// are gone after the call.
func (c *Cleaner) Clean(gitDir string) ([]string, error) {
	artifacts, err := Scan(gitDir)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, a := range artifacts {
		if !c.policy.Stale(a) {
			c.logger.Debug("keeping lock file, not stale", "path", a.Path, "modtime", a.ModTime)
			continue
		}

		// Re-check existence immediately before deleting; the owning
		// process may have released the lock since the scan.
		if _, err := os.Stat(a.Path); err != nil {
			if os.IsNotExist(err) {
				removed = append(removed, a.Path)
			}
			continue
		}

		if err := os.Remove(a.Path); err != nil {
			if os.IsNotExist(err) {
				removed = append(removed, a.Path)
				continue
			}
			c.logger.Warn("failed to remove stale lock file", "path", a.Path, "error", err)
			continue
		}

		c.logger.Info("removed stale lock file", "path", a.Path, "age", time.Since(a.ModTime).Round(time.Second))
		removed = append(removed, a.Path)
	}

	return removed, nil
}
