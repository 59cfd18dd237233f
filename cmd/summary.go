package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lacuene/lacuene/internal/report"
)

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the plain-text coverage summary.",
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

			fmt.Fprint(cmd.OutOrStdout(), report.Summary(report.SummaryInput{
				GapReport: gapReport,
				Sources:   sources,
			}))
			return nil
		},
	}
}
