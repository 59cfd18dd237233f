package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lacuene/lacuene/internal/viz"
)

func newVizdataCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "vizdata",
		Short: "Derive the Cytoscape.js gene graph from the model.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			model := modelRunner()

			sources, err := model.GeneSources(ctx)
			if err != nil {
				return err
			}
			geneData, err := model.Genes(ctx)
			if err != nil {
				return err
			}

			expanded, err := viz.LoadExpanded(cfg.Paths.ExpandedPath)
			if err != nil {
				return err
			}
			if len(expanded) > 0 {
				logger.Info("loaded expanded tier", zap.Int("genes", len(expanded)))
			}

			graph := viz.Build(viz.DefaultConfig(), sources, geneData, expanded)

			if output == "" {
				output = filepath.Join(cfg.Paths.OutputDir, "vizdata.json")
			}
			raw, err := json.MarshalIndent(graph, "", "  ")
			if err != nil {
				return err
			}
			raw = append(raw, '\n')
			if err := os.MkdirAll(filepath.Dir(output), 0o750); err != nil {
				return err
			}
			if err := os.WriteFile(output, raw, 0o600); err != nil {
				return fmt.Errorf("write vizdata: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "vizdata: wrote %s\n", output)
			fmt.Fprintf(cmd.OutOrStdout(), "  %d nodes (%d curated, %d expanded), %d edges\n",
				graph.Metadata.GeneCount, graph.Metadata.CuratedCount,
				graph.Metadata.ExpandedCount, graph.Metadata.EdgeCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default <output dir>/vizdata.json)")
	return cmd
}
