package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "aws-cost-connector",
		Short: "Dispatch AWS Cost Explorer requests for batches of workflow items",
		Long: `aws-cost-connector turns node parameters into AWS Cost Explorer calls,
one call per batch item, and returns the responses as JSON.

Configuration sources (highest priority first):
  1. AWS_COST_* environment variables
  2. YAML file given with --config
  3. Built-in defaults`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to configuration file (defaults and environment only when empty)")

	root.AddCommand(
		newRunCommand(&configPath),
		newServeCommand(&configPath),
	)

	return root
}
