package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/aws"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/collector"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/config"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/dispatch"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/logger"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/server"
	"github.com/zgpcy/aws-cost-explorer-connector/internal/version"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultShutdownTimeout is the maximum time to wait for graceful shutdown
	DefaultShutdownTimeout = 30 * time.Second
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /execute, metrics and health endpoints over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, *configPath)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, configPath string) error {
	log := logger.New(cfg.LogLevel)
	log.Info("AWS Cost Explorer connector starting",
		"version", version.Version,
		"config_path", configPath)

	log.Info("Configuration loaded successfully",
		"node", cfg.Node.Name,
		"region", cfg.Credentials.Region,
		"static_credentials", cfg.Credentials.HasStaticKeys(),
		"continue_on_fail", cfg.Node.ContinueOnFail,
		"parameters", len(cfg.Node.Parameters),
		"http_port", cfg.HTTPPort,
		"api_timeout_seconds", cfg.APITimeout)

	client, err := aws.NewClient(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to create Cost Explorer client", "error", err)
		return err
	}
	log.Info("Cost Explorer client initialized successfully")

	dispatchCollector := collector.NewDispatchCollector(log)
	if err := prometheus.Register(dispatchCollector); err != nil {
		log.Error("Failed to register collector", "error", err)
		return err
	}
	log.Info("Collector registered with Prometheus")

	d := dispatch.New(client, log,
		dispatch.WithNodeName(cfg.Node.Name),
		dispatch.WithObserver(dispatchCollector))

	srv := server.NewServer(cfg, d, dispatchCollector, log,
		server.WithReadinessCheck(aws.CredentialsCheck(client)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server error", "error", err)
		return err
	}

	log.Info("Server stopped gracefully")
	return nil
}
