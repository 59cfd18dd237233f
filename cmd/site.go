package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lacuene/lacuene/internal/site"
	"github.com/lacuene/lacuene/internal/snapshot"
	"github.com/lacuene/lacuene/internal/viz"
)

func newSiteCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "site",
		Short: "Render the static Grant Gap Finder pages.",
		Long: `Exports the model projections, loads the generated graph data,
renders the index and about pages, and persists today's snapshot for
future diffing.`,
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
			gapReport, err := model.GapReport(ctx)
			if err != nil {
				return err
			}
			funding, err := model.FundingGaps(ctx)
			if err != nil {
				return err
			}
			weighted, err := model.WeightedGaps(ctx)
			if err != nil {
				return err
			}
			anomalies, err := model.Anomalies(ctx)
			if err != nil {
				return err
			}

			graph, err := loadVizdata()
			if err != nil {
				return err
			}

			store := snapshot.NewStore(cfg.Paths.SnapshotDir)
			snaps, err := store.Load()
			if err != nil {
				return err
			}

			today := time.Now().Format("2006-01-02")
			current := site.CurrentSnapshot(today, gapReport.Total(), funding.Critical, sources)

			// Same-day re-runs replace, never duplicate.
			kept := snaps[:0]
			for _, s := range snaps {
				if s.Date != today {
					kept = append(kept, s)
				}
			}
			snaps = append(kept, current)

			data := site.Data{
				Total:          gapReport.Total(),
				SourceCount:    12,
				Sources:        site.BuildSources(sources),
				GeneRows:       site.BuildGeneRows(sources, geneData),
				CriticalGaps:   funding.Critical,
				CriticalCount:  len(funding.Critical),
				FundingSummary: funding.Summary,
				Snapshots:      snaps,
				Legend:         site.BuildLegend(graph),
				Viz:            graph,
				Weighted:       weighted,
				Anomalies:      anomalies,
			}

			gen, err := site.New()
			if err != nil {
				return err
			}
			if output == "" {
				output = filepath.Join(cfg.Paths.OutputDir, "site")
			}
			if err := gen.Write(output, data); err != nil {
				return err
			}
			if err := store.Save(current); err != nil {
				return err
			}

			logger.Info("site generated",
				zap.String("dir", output),
				zap.Int("genes", data.Total),
				zap.Int("critical_gaps", len(funding.Critical)),
				zap.Int("snapshots", len(snaps)))
			fmt.Fprintf(cmd.OutOrStdout(), "site: wrote %s\n", filepath.Join(output, "index.html"))
			fmt.Fprintf(cmd.OutOrStdout(), "  %d nodes, %d edges\n", graph.Metadata.GeneCount, graph.Metadata.EdgeCount)
			fmt.Fprintf(cmd.OutOrStdout(), "  %d critical gaps, %d genes total\n", len(funding.Critical), data.Total)
			fmt.Fprintf(cmd.OutOrStdout(), "  %d snapshot(s) in %s\n", len(snaps), cfg.Paths.SnapshotDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "site directory (default <output dir>/site)")
	return cmd
}

// loadVizdata reads the graph document generated by the vizdata command.
func loadVizdata() (viz.Graph, error) {
	path := filepath.Join(cfg.Paths.OutputDir, "vizdata.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return viz.Graph{}, fmt.Errorf("read vizdata (run `lacuene vizdata` first): %w", err)
	}
	var graph viz.Graph
	if err := json.Unmarshal(raw, &graph); err != nil {
		return viz.Graph{}, fmt.Errorf("parse vizdata: %w", err)
	}
	return graph, nil
}
