package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/hopgraph/internal/backend"
	"github.com/vanshika/hopgraph/internal/config"
	"github.com/vanshika/hopgraph/internal/dataset"
	"github.com/vanshika/hopgraph/internal/logging"
	"github.com/vanshika/hopgraph/internal/service"
)

var errEmptyDataset = errors.New("dataset has no vertices")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		file       string
		workers    int
	)

	root := &cobra.Command{
		Use:           "hopgraph-ingest --file graph.yaml",
		Short:         "Load a YAML graph dataset into the configured backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return run(cmd.Context(), cfg, file, workers)
		},
	}
	root.Flags().StringVarP(&configFile, "config", "c", "", "optional YAML config file; environment variables override it")
	root.Flags().StringVarP(&file, "file", "f", "", "YAML dataset to ingest")
	root.Flags().IntVarP(&workers, "workers", "w", 4, "number of concurrent workers for ingestion")
	_ = root.MarkFlagRequired("file")
	return root
}

func run(parent context.Context, cfg config.Config, file string, workers int) error {
	logger := logging.New(cfg.Logging).With("component", "ingest")

	if cfg.Graph.Backend == config.BackendMemory {
		return fmt.Errorf("the %s backend keeps nothing between runs; set GRAPH_BACKEND to %s or %s",
			config.BackendMemory, config.BackendSQLite, config.BackendNeo4j)
	}

	ds, err := dataset.Load(file)
	if err != nil {
		return err
	}
	if len(ds.Vertices) == 0 {
		return fmt.Errorf("%w: %s", errEmptyDataset, file)
	}

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opened, err := backend.Open(ctx, logger, cfg.Graph)
	if err != nil {
		return fmt.Errorf("open %s graph: %w", cfg.Graph.Backend, err)
	}
	defer func() {
		if err := opened.Close(context.Background()); err != nil {
			logger.Warn("closing graph store failed", "error", err)
		}
	}()

	start := time.Now()
	logger.Info("ingesting dataset",
		"path", file,
		"vertices", len(ds.Vertices),
		"edges", len(ds.Edges),
		"workers", workers,
	)
	if err := service.NewBulkIngestor(opened.Store, workers).IngestDataset(ctx, ds); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	logger.Info("ingestion complete", "duration", time.Since(start).String(), "vertices", len(ds.Vertices), "edges", len(ds.Edges))
	return nil
}
