package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vanshika/hopgraph/internal/backend"
	"github.com/vanshika/hopgraph/internal/config"
	"github.com/vanshika/hopgraph/internal/logging"
	"github.com/vanshika/hopgraph/internal/server"
	"github.com/vanshika/hopgraph/internal/service"
	"github.com/vanshika/hopgraph/internal/telemetry"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "hopgraph-server",
		Short:         "Serve the customized path traverser over HTTP",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return run(cmd.Context(), cfg)
		},
	}
	root.Flags().StringVarP(&configFile, "config", "c", "", "optional YAML config file; environment variables override it")
	return root
}

func run(ctx context.Context, cfg config.Config) error {
	logger := logging.New(cfg.Logging)

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry, version, os.Stdout)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("flushing traces failed", "error", err)
		}
	}()

	opened, err := backend.Open(ctx, logger, cfg.Graph)
	if err != nil {
		return fmt.Errorf("open %s graph: %w", cfg.Graph.Backend, err)
	}
	defer func() {
		if err := opened.Close(context.Background()); err != nil {
			logger.Warn("closing graph store failed", "error", err)
		}
	}()

	traversalService := service.NewTraversalService(opened.Store, logger)
	apiHandlers := server.NewAPIHandlers(logger, traversalService, cfg.Graph.Name, cfg.Traversal)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.StoreHealthService{Store: opened.Store},
		API:              apiHandlers,
		MetricsEnabled:   cfg.HTTP.MetricsEnabled,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)
	logger.Info("serving customized paths",
		"addr", srv.Addr(),
		"backend", cfg.Graph.Backend,
		"graph", cfg.Graph.Name,
		"version", version,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	return runErr
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
