package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lacuene/lacuene/internal/normalize"
	"github.com/lacuene/lacuene/internal/runner"
)

func newRunCmd() *cobra.Command {
	var (
		force     bool
		staleDays int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run all normalizers in parallel with staleness-based skipping.",
		Long: `Executes every normalizer as a subprocess through a bounded worker
pool. Sources with a cache file younger than the staleness threshold are
skipped unless --force is set. Exits non-zero if any normalizer fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if staleDays > 0 {
				cfg.Runner.StaleDays = staleDays
			}

			r := runner.New(cfg, logger)
			results, err := r.Run(cmd.Context(), normalize.All(), force)

			for _, res := range results {
				switch {
				case res.Skipped:
					fmt.Fprintf(cmd.OutOrStdout(), "SKIP %-16s %s\n", res.Source, res.Reason)
				case res.Err != nil:
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %-16s %v\n", res.Source, res.Err)
					for _, line := range res.Tail {
						fmt.Fprintf(cmd.OutOrStdout(), "     %s\n", line)
					}
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "OK   %-16s %s\n", res.Source, res.Duration.Round(10*time.Millisecond))
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "run every normalizer regardless of cache age")
	cmd.Flags().IntVar(&staleDays, "stale-days", 0, "override the cache staleness threshold in days")
	return cmd
}
