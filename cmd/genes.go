package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lacuene/lacuene/internal/genes"
)

func newGenesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "genes",
		Short: "Export the canonical gene list as a model fragment.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				output = filepath.Join(cfg.Paths.ModelDir, "gene_list.cue")
			}
			if err := genes.ExportCUE(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "genes: wrote %d symbols to %s\n", len(genes.Registry), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file (default <model dir>/gene_list.cue)")
	return cmd
}
