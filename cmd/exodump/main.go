// Command exodump inspects Exodus II result files and exports their
// variables as CSV or Arrow tables.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type app struct {
	verbose bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "exodump",
		Short: "Inspect and export Exodus II result files",
		Long: `exodump reads Exodus II result files (classic netCDF or netCDF-4) and
resolves the numbered result variables to the names stored in the file.

  exodump info run.e                  # container, dimensions, variables
  exodump names run.e --family elem   # position, storage key, name
  exodump export run.e -o last.csv    # last time step of every node variable`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if a.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(newInfoCmd(a))
	root.AddCommand(newNamesCmd(a))
	root.AddCommand(newExportCmd(a))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
