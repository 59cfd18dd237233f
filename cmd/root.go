// Package cmd wires the pipeline's command surface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lacuene/lacuene/internal/config"
	"github.com/lacuene/lacuene/internal/cuemodel"
	"github.com/lacuene/lacuene/internal/logging"
)

var cfgFile string

// cfg and logger are populated by the root PersistentPreRunE before any
// subcommand runs.
var (
	cfg    config.Config
	logger *zap.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lacuene",
		Short: "Neural crest gene data reconciliation pipeline.",
		Long: `lacuene reconciles a curated set of neural crest genes across public
biomedical data sources. Normalizers fetch and cache per-source data as
declarative model fragments; the model tool validates and projects them;
generators render the digest, summary, graph data, and static site.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err = logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default lacuene.yaml in the working directory)")

	cmd.AddCommand(
		newNormalizeCmd(),
		newRunCmd(),
		newVetCmd(),
		newDigestCmd(),
		newSummaryCmd(),
		newVizdataCmd(),
		newSiteCmd(),
		newServeCmd(),
		newGenesCmd(),
	)
	return cmd
}

// modelRunner builds the external model tool runner from the config.
func modelRunner() *cuemodel.Runner {
	return cuemodel.New(cfg.Paths.CueBinary, cfg.Paths.ModelDir)
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
