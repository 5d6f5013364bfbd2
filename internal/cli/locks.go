package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okvist/refsolve/internal/git"
	"github.com/okvist/refsolve/internal/lockfile"
)

var (
	dryRunFlag bool
	minAgeFlag time.Duration
)

var locksCmd = &cobra.Command{
	Use:   "locks <repo_path>",
	Short: "Scan for and remove stale git lock files",
	Long: `Locks scans the repository's git control directory for lock files left
behind by crashed or interrupted git processes (the index lock, the
packed-refs lock, and per-ref locks under the heads and remotes
namespaces) and removes the ones older than the staleness threshold.

With --dry-run, found lock files are listed without deleting anything.`,
	Args: cobra.ExactArgs(1),
	RunE: runLocks,
}

func init() {
	rootCmd.AddCommand(locksCmd)

	locksCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "List lock files without removing them")
	locksCmd.Flags().DurationVar(&minAgeFlag, "min-age", lockfile.DefaultMinAge, "Minimum age before a lock is considered stale")
}

func runLocks(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	gitDir, err := git.GitDir(context.Background(), args[0])
	if err != nil {
		return err
	}

	if dryRunFlag {
		artifacts, err := lockfile.Scan(gitDir)
		if err != nil {
			return fmt.Errorf("failed to scan for lock files: %w", err)
		}

		policy := lockfile.NewAgePolicy(minAgeFlag, nil)
		for _, a := range artifacts {
			state := "fresh"
			if policy.Stale(a) {
				state = "stale"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tage=%s\n", a.Path, state, time.Since(a.ModTime).Round(time.Second))
		}
		return nil
	}

	cleaner := lockfile.NewCleaner(lockfile.NewAgePolicy(minAgeFlag, nil), logger.Named("locks"))
	removed, err := cleaner.Clean(gitDir)
	if err != nil {
		return fmt.Errorf("lock cleanup failed: %w", err)
	}

	for _, path := range removed {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}
