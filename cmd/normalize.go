package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lacuene/lacuene/internal/normalize"
)

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <source>",
		Short: "Run one normalizer against its external data source.",
		Long: `Fetches one source's data for every tracked gene, reusing the
per-source cache on hit, and writes the model fragment. Sources: ` +
			strings.Join(sourceNames(), ", ") + ".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, ok := normalize.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown source %q (available: %s)", args[0], strings.Join(sourceNames(), ", "))
			}

			env := normalize.NewEnv(cfg, logger)
			if err := src.Run(cmd.Context(), env); err != nil {
				logger.Error("normalizer failed", zap.String("source", src.Name()), zap.Error(err))
				return err
			}
			return nil
		},
	}
}

func sourceNames() []string {
	all := normalize.All()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name()
	}
	return names
}
