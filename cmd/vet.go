package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate the merged model with the external model tool.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			model := modelRunner()
			if !model.Available() {
				return fmt.Errorf("model tool binary %q not found in PATH", cfg.Paths.CueBinary)
			}
			if err := model.Vet(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "model validation passed")
			return nil
		},
	}
}
