package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/seoaudit/page"
	"github.com/seo-optimizer/seoaudit/report"
)

func newExtractCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Print the SEO signals extracted from a page",
		Long: `Extract fetches a page and prints its meta tags, Open Graph and Twitter Card
data, JSON-LD blocks, heading outline, link and image counts and technical
signals without auditing them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkURL(args[0]); err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), *configPath, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer a.close()

			p, err := a.analyzer.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !asJSON {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), report.Extraction(p))
				return err
			}
			data, err := json.MarshalIndent(page.Normalize(p), "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw extraction as JSON")
	return cmd
}
