// Package backend opens the graph store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vanshika/hopgraph/internal/config"
	"github.com/vanshika/hopgraph/internal/graph"
	"github.com/vanshika/hopgraph/internal/memgraph"
	"github.com/vanshika/hopgraph/internal/repository"
	"github.com/vanshika/hopgraph/internal/service"
	"github.com/vanshika/hopgraph/internal/sqlitegraph"
)

// Store is everything the binaries need from a graph backend.
type Store interface {
	service.GraphStore
	service.GraphWriter
	Ping(ctx context.Context) error
}

// Opened pairs a store with the function that releases it.
type Opened struct {
	Store Store
	Close func(context.Context) error
}

// Open builds the store named by cfg.Backend. For neo4j the connection is
// verified and the id constraint created before returning.
func Open(ctx context.Context, logger *slog.Logger, cfg config.GraphConfig) (Opened, error) {
	switch cfg.Backend {
	case config.BackendNeo4j:
		return openNeo4j(ctx, logger, cfg)
	case config.BackendSQLite:
		store, err := sqlitegraph.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return Opened{}, err
		}
		logger.Info("opened sqlite graph", "path", cfg.SQLitePath)
		return Opened{Store: store, Close: func(context.Context) error { return store.Close() }}, nil
	case config.BackendMemory:
		store := memgraph.New()
		if cfg.Fixture != "" {
			loaded, err := memgraph.FromFile(cfg.Fixture)
			if err != nil {
				return Opened{}, err
			}
			store = loaded
			vertices, edges := store.Stats()
			logger.Info("loaded graph fixture", "path", cfg.Fixture, "vertices", vertices, "edges", edges)
		}
		return Opened{Store: store, Close: func(context.Context) error { return nil }}, nil
	default:
		return Opened{}, fmt.Errorf("unsupported graph backend %q", cfg.Backend)
	}
}

func openNeo4j(ctx context.Context, logger *slog.Logger, cfg config.GraphConfig) (Opened, error) {
	if cfg.URI == "" {
		return Opened{}, graph.ErrMissingURI
	}
	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.URI,
		Database:       cfg.Database,
		Username:       cfg.Username,
		Password:       cfg.Password,
		MaxConnections: cfg.MaxConnections,
	})
	if err != nil {
		return Opened{}, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return Opened{}, err
	}
	repo := repository.New(client)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = client.Close(ctx)
		return Opened{}, fmt.Errorf("ensure schema: %w", err)
	}
	logger.Info("connected to graph", "uri", cfg.URI, "database", cfg.Database)
	return Opened{Store: repo, Close: client.Close}, nil
}
