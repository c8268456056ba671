package cmd

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/seo-optimizer/seoaudit/logging"
	"github.com/seo-optimizer/seoaudit/server"
)

const statisticsFile = "statistics.json"

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes the analyzer over a JSON API under /api. The port, rate limits
and allowed origins come from the configuration file and the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, *configPath, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer a.close()

			statistics, err := logging.NewStatistics(filepath.Join(a.cfg.DataDir, statisticsFile), a.cfg.Server.DevMode)
			if err != nil {
				a.logger.Warn("statistics not loaded, starting fresh", "error", err)
			}

			gin.SetMode(a.cfg.Server.GinMode)
			return server.New(a.analyzer, statistics, a.cfg.Server, a.logger).Run(ctx)
		},
	}
}
