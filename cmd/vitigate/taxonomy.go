package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/vitigate/internal/taxonomy"
)

func newTaxonomyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy",
		Short: "List every action with its types and default type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := taxonomy.Default()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ACTION\tDEFAULT\tTYPES")
			for _, action := range reg.Actions() {
				def, _ := reg.Default(action)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", action, def, strings.Join(reg.Types(action), ","))
			}
			return tw.Flush()
		},
	}
}
