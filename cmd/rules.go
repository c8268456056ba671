package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/seoaudit/audit"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the rule catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tWEIGHT\tRULE\tNAME")
			for _, c := range audit.Categories {
				for _, r := range audit.RulesFor(c) {
					fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", c, audit.Weight(c), r.ID, r.Name)
				}
			}
			return w.Flush()
		},
	}
}
