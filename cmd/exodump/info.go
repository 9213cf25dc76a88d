package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-exodus/exodus"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Show the container format, dimensions and variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exodus.Open(args[0], exodus.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			info := f.Info()
			fmt.Fprintf(out, "=== %s ===\n\n", f.Path())
			fmt.Fprintf(out, "Format: %s\n", info.Format)
			if info.Title != "" {
				fmt.Fprintf(out, "Title: %s\n", info.Title)
			}
			if info.AddressSize > 0 {
				fmt.Fprintf(out, "Superblock version: %d\n", info.SuperblockVersion)
				fmt.Fprintf(out, "Address size: %d\n", info.AddressSize)
				fmt.Fprintf(out, "EOF address: %d\n", info.EOFAddress)
			}

			if len(info.Dimensions) > 0 {
				fmt.Fprintf(out, "\nDimensions:\n")
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, d := range info.Dimensions {
					unlimited := ""
					if d.Unlimited {
						unlimited = "(unlimited)"
					}
					fmt.Fprintf(tw, "  %s\t%d\t%s\n", d.Name, d.Len, unlimited)
				}
				tw.Flush()
			}

			fmt.Fprintf(out, "\nVariables:\n")
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, name := range f.Variables() {
				vi, err := f.Describe(name)
				if err != nil {
					a.logger.Warn("describe failed", zap.String("variable", name), zap.Error(err))
					fmt.Fprintf(tw, "  %s\tERROR: %v\n", name, err)
					continue
				}
				varying := ""
				if vi.TimeVarying {
					varying = "time-varying"
				}
				fmt.Fprintf(tw, "  %s\t(%s)\t%v\t%s\n", name, strings.Join(vi.Dimensions, ", "), vi.Shape, varying)
			}
			return tw.Flush()
		},
	}
}
