package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/lacuene/lacuene/internal/report"
	"github.com/lacuene/lacuene/internal/snapshot"
)

func newDigestCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Generate the weekly markdown digest.",
		Long: `Renders source coverage, research gaps, the diff against the previous
snapshot, and the expanded-pipeline candidates as markdown. Writes to
stdout unless -o is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			model := modelRunner()

			gapReport, err := model.GapReport(ctx)
			if err != nil {
				return err
			}
			sources, err := model.GeneSources(ctx)
			if err != nil {
				return err
			}

			snaps, err := snapshot.NewStore(cfg.Paths.SnapshotDir).Load()
			if err != nil {
				return err
			}
			derived, err := report.LoadDerived(cfg.Paths.DerivedDir)
			if err != nil {
				return err
			}

			digest := report.Digest(report.DigestInput{
				Date:      time.Now().Format("2006-01-02"),
				GapReport: gapReport,
				Sources:   sources,
				Snapshots: snaps,
				Derived:   derived,
			})

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), digest)
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o750); err != nil {
				return err
			}
			if err := os.WriteFile(output, []byte(digest), 0o600); err != nil {
				return fmt.Errorf("write digest: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "digest written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
