package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-exodus/exodus"
	"github.com/robert-malhotra/go-exodus/internal/config"
	"github.com/robert-malhotra/go-exodus/table"
)

type exportFlags struct {
	config        string
	family        string
	vars          []string
	step          int
	coordinates   bool
	format        string
	output        string
	compress      bool
	allowOverride bool
}

func newExportCmd(a *app) *cobra.Command {
	var fl exportFlags

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write one time step of a result family as a table",
		Long: `export transcribes a result family, optionally keeps only some variables,
takes one time step of every (time_step, n) array and writes the columns as
CSV or an Arrow IPC stream. Flags override values from --config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := exportConfig(cmd, &fl)
			if err != nil {
				return err
			}
			return runExport(cmd.OutOrStdout(), args[0], cfg, a.logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&fl.config, "config", "c", "", "YAML export profile")
	flags.StringVarP(&fl.family, "family", "f", "node", "Variable family: node or elem")
	flags.StringSliceVar(&fl.vars, "vars", nil, "Comma-separated variable names to export (default all)")
	flags.IntVar(&fl.step, "step", -1, "Time step to export; negative counts from the last")
	flags.BoolVar(&fl.coordinates, "coordinates", false, "Prepend nodal coordinate columns")
	flags.StringVar(&fl.format, "format", "csv", "Output format: csv or arrow")
	flags.StringVarP(&fl.output, "output", "o", "", "Output path (default stdout); a .zst suffix compresses")
	flags.BoolVar(&fl.compress, "compress", false, "Compress Arrow buffers with zstd")
	flags.BoolVar(&fl.allowOverride, "allow-override", false, "Let a repeated name replace the earlier one")
	return cmd
}

// exportConfig loads the profile and applies the flags the user set.
func exportConfig(cmd *cobra.Command, fl *exportFlags) (*config.Config, error) {
	cfg := config.Default()
	if fl.config != "" {
		var err error
		if cfg, err = config.Load(fl.config); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("family") || fl.config == "" {
		fam, err := exodus.ParseFamily(fl.family)
		if err != nil {
			return nil, err
		}
		cfg.Family = fam
	}
	if flags.Changed("vars") {
		cfg.Variables = fl.vars
	}
	if flags.Changed("step") {
		cfg.Step = fl.step
	}
	if flags.Changed("coordinates") {
		cfg.Coordinates = fl.coordinates
	}
	if flags.Changed("format") || fl.config == "" {
		cfg.Format = table.Format(fl.format)
	}
	if flags.Changed("output") {
		cfg.Output = fl.output
	}
	if flags.Changed("compress") {
		cfg.Compress = fl.compress
	}
	if flags.Changed("allow-override") {
		cfg.AllowOverride = fl.allowOverride
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runExport(stdout io.Writer, path string, cfg *config.Config, logger *zap.Logger) error {
	f, err := exodus.Open(path, exodus.WithLogger(logger))
	if err != nil {
		return err
	}
	defer f.Close()

	var opts []exodus.Option
	if cfg.AllowOverride {
		opts = append(opts, exodus.AllowOverride())
	}
	m, err := exodus.Transcribe(f, cfg.Family, opts...)
	if err != nil {
		return err
	}
	if len(cfg.Variables) > 0 {
		if m, err = m.Select(cfg.Variables...); err != nil {
			return err
		}
	}
	if m, err = m.Step(cfg.Step); err != nil {
		return err
	}

	var coords *exodus.Mapping
	if cfg.Coordinates {
		if coords, err = exodus.Coordinates(f); err != nil {
			return err
		}
	}

	record, err := table.FromMappings(coords, m)
	if err != nil {
		return err
	}
	defer record.Release()

	logger.Debug("exporting",
		zap.Stringer("family", cfg.Family),
		zap.Int64("rows", record.NumRows()),
		zap.Int64("columns", record.NumCols()),
		zap.String("format", string(cfg.Format)))

	return writeOutput(stdout, cfg, func(w io.Writer) error {
		return table.Write(w, record, cfg.Format, cfg.Compress)
	})
}

// writeOutput opens the configured destination, compressing when the path
// ends in .zst, and hands it to write.
func writeOutput(stdout io.Writer, cfg *config.Config, write func(io.Writer) error) error {
	if cfg.Output == "" || cfg.Output == "-" {
		return write(stdout)
	}

	out, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()

	if !strings.HasSuffix(cfg.Output, ".zst") {
		if err := write(out); err != nil {
			return err
		}
		return out.Close()
	}

	zw, err := table.Compress(out)
	if err != nil {
		return err
	}
	if err := write(zw); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flushing compressed output: %w", err)
	}
	return out.Close()
}
