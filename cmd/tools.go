package cmd

import (
	"github.com/spf13/cobra"

	"github.com/seo-optimizer/seoaudit/toolserver"
)

func newToolsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Serve the audit tools over JSON-RPC on stdin and stdout",
		Long: `Tools runs a line-delimited JSON-RPC 2.0 server on stdin and stdout offering
seo_audit, extract_meta, compare_seo and extract_json to an assistant host.
Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *configPath, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer a.close()

			return toolserver.New(a.analyzer, Version, a.logger).
				Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
