package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/seoaudit/analyzer"
	"github.com/seo-optimizer/seoaudit/report"
)

func newCompareCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <url> <url>...",
		Short: "Audit several pages and compare them side by side",
		Args:  cobra.RangeArgs(analyzer.MinCompare, analyzer.MaxCompare),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, u := range args {
				if err := checkURL(u); err != nil {
					return err
				}
			}
			a, err := newApp(cmd.Context(), *configPath, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer a.close()

			entries, err := a.analyzer.Compare(cmd.Context(), args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), report.Comparison(entries))
			return err
		},
	}
}
