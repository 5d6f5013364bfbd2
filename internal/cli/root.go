package cli

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

var (
	versionStr string
	commitStr  string
	dateStr    string
)

// Global flags
var (
	quietFlag   bool
	verboseFlag bool
)

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(version, commit, date string) {
	versionStr = version
	commitStr = commit
	dateStr = date
}

var rootCmd = &cobra.Command{
	Use:   "refsolve",
	Short: "Git reference pre-flight and repair utility",
	Long: `refsolve prepares a repository for a comparison between two revisions.

Before a CI pipeline diffs two tags or branches, refsolve removes stale
lock files left by crashed git processes, fetches and validates both
revisions with retry and backoff, and prints the filtered diff between
them. Failures are reported with distinct exit codes so the pipeline
can tell transient fetch problems apart from genuinely missing tags.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// newLogger creates the process logger honoring --quiet/--verbose.
func newLogger() hclog.Logger {
	level := hclog.Info
	if verboseFlag {
		level = hclog.Debug
	}
	if quietFlag {
		level = hclog.Error
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "refsolve",
		Level:  level,
		Output: os.Stderr,
	})
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-error log output")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose log output")
}
