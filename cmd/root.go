// Package cmd implements the seoaudit CLI using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X ...cmd.Version=...".
var Version = "dev"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "seoaudit",
		Short: "seoaudit audits web pages for on-page SEO",
		Long: `seoaudit fetches a web page, extracts its SEO-relevant signals and scores them
against a fixed rule catalog across ten weighted categories.

Usage:
  seoaudit audit <url> [flags]
  seoaudit serve`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")

	root.AddCommand(
		newServeCmd(&configPath),
		newAuditCmd(&configPath),
		newExtractCmd(&configPath),
		newCompareCmd(&configPath),
		newRulesCmd(),
		newToolsCmd(&configPath),
	)
	return root
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
