package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-exodus/exodus"
)

func newNamesCmd(a *app) *cobra.Command {
	var family string

	cmd := &cobra.Command{
		Use:   "names FILE",
		Short: "List the result variables of a family with their storage keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fam, err := exodus.ParseFamily(family)
			if err != nil {
				return err
			}

			f, err := exodus.Open(args[0], exodus.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer f.Close()

			names, keys, err := exodus.StorageKeys(f, fam)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "POS\tKEY\tNAME\n")
			for i, name := range names {
				missing := ""
				if !f.Has(keys[i]) {
					missing = "\t(missing)"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s%s\n", i, keys[i], name, missing)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&family, "family", "f", "node", "Variable family: node or elem")
	return cmd
}
