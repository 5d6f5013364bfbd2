package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okvist/refsolve/internal/config"
	"github.com/okvist/refsolve/internal/diff"
	"github.com/okvist/refsolve/internal/fetch"
	"github.com/okvist/refsolve/internal/git"
	"github.com/okvist/refsolve/internal/lockfile"
	"github.com/okvist/refsolve/internal/output"
	"github.com/okvist/refsolve/internal/pathfilter"
	"github.com/okvist/refsolve/internal/resolver"
)

var (
	filterFlag       string
	maxRetriesFlag   int
	backoffBaseFlag  time.Duration
	fetchTimeoutFlag time.Duration
	remoteFlag       string
	noFetchFlag      bool
	formatFlag       string
	outputFlag       string
	colorFlag        string
	configFlag       string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <repo_path> <old_rev> <new_rev>",
	Short: "Resolve two revisions and print the diff between them",
	Long: `Resolve prepares the repository and computes the diff between two revisions.

In order: stale lock files under the git control directory are removed,
all tags and branch refs are fetched from the remote with retry and
backoff (repeating lock cleanup before each attempt), both revisions
are validated independently with a targeted single-ref fetch as
fallback, and the diff restricted to the filter kinds is printed as
newline-separated "path<TAB>kind" entries.`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&filterFlag, "filter", "A,M", "Change kinds to include: comma-separated letters or names (A,M,D,R,C)")
	resolveCmd.Flags().IntVar(&maxRetriesFlag, "max-retries", 0, "Maximum fetch attempts (overrides config)")
	resolveCmd.Flags().DurationVar(&backoffBaseFlag, "backoff-base", 0, "Base delay between fetch attempts, e.g. 2s (overrides config)")
	resolveCmd.Flags().DurationVar(&fetchTimeoutFlag, "fetch-timeout", 0, "Timeout per fetch attempt, e.g. 120s (overrides config)")
	resolveCmd.Flags().StringVar(&remoteFlag, "remote", "", "Remote to fetch from (overrides config)")
	resolveCmd.Flags().BoolVar(&noFetchFlag, "no-fetch", false, "Skip fetching; revisions must resolve locally")
	resolveCmd.Flags().StringVar(&formatFlag, "format", "", "Output format: text, json")
	resolveCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write output to file instead of stdout")
	resolveCmd.Flags().StringVar(&colorFlag, "color", "", "Color mode: auto, always, never")
	resolveCmd.Flags().StringVar(&configFlag, "config", "", "Path to config file (default: .refsolve.hcl in cwd or repo)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	repoPath := args[0]
	var oldRev, newRev string
	if len(args) > 1 {
		oldRev = args[1]
	}
	if len(args) > 2 {
		newRev = args[2]
	}

	logger := newLogger()

	cfg, err := config.Load(configFlag, repoPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg)

	kinds, err := diff.ParseKindSet(filterFlag)
	if err != nil {
		return fmt.Errorf("invalid --filter value: %w", err)
	}

	ctx := context.Background()

	if err := git.CheckMinVersion(ctx); err != nil {
		return err
	}

	fetcher := &fetch.Fetcher{
		Remote:      cfg.Fetch.Remote,
		MaxAttempts: cfg.Fetch.MaxAttempts,
		BackoffBase: cfg.BackoffBase(),
		Timeout:     cfg.FetchTimeout(),
		Logger:      logger.Named("fetch"),
	}

	var cleaner *lockfile.Cleaner
	if cfg.LocksEnabled() {
		policy := lockfile.NewAgePolicy(cfg.LockMinAge(), nil)
		cleaner = lockfile.NewCleaner(policy, logger.Named("locks"))
	} else {
		// Cleanup disabled: a policy that never marks anything stale.
		cleaner = lockfile.NewCleaner(lockfile.PolicyFunc(func(lockfile.Artifact) bool { return false }), logger.Named("locks"))
	}

	opts := []resolver.Option{
		resolver.WithFetcher(fetcher),
		resolver.WithCleaner(cleaner),
		resolver.WithLogger(logger),
	}
	if noFetchFlag {
		opts = append(opts, resolver.WithoutFetch())
	}

	res := resolver.New(cfg.Fetch.Remote, opts...)
	result, err := res.ResolveDiff(ctx, repoPath, oldRev, newRev, kinds)
	if err != nil {
		return err
	}

	// Scope the result to the configured path patterns.
	filter := pathfilter.New(cfg.Paths.Include, cfg.Paths.Exclude)
	filtered := make([]diff.Change, 0, len(result.Changes))
	for _, c := range result.Changes {
		ok, err := filter.Match(c.Path)
		if err != nil {
			return fmt.Errorf("invalid path pattern: %w", err)
		}
		if ok {
			filtered = append(filtered, c)
		}
	}
	result.Changes = filtered

	// Determine output writer
	var writer *os.File
	if outputFlag != "" {
		f, err := os.Create(outputFlag)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	} else {
		writer = os.Stdout
	}

	format := output.Format(cfg.Output.Format)
	renderer := output.NewRenderer(format, shouldUseColor(writer, cfg.Output.Color))
	if err := renderer.Render(writer, result); err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}

	return nil
}

// applyFlagOverrides layers explicitly-set flags over the loaded config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("remote") {
		cfg.Fetch.Remote = remoteFlag
	}
	if cmd.Flags().Changed("max-retries") {
		cfg.Fetch.MaxAttempts = maxRetriesFlag
	}
	if cmd.Flags().Changed("backoff-base") {
		cfg.Fetch.BackoffBase = backoffBaseFlag.String()
	}
	if cmd.Flags().Changed("fetch-timeout") {
		cfg.Fetch.Timeout = fetchTimeoutFlag.String()
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = formatFlag
	}
	if cmd.Flags().Changed("color") {
		cfg.Output.Color = colorFlag
	}
}

func shouldUseColor(f *os.File, mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default: // auto
		// Check if the writer is a terminal
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
}
