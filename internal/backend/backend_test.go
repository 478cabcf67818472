package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vanshika/hopgraph/internal/config"
	"github.com/vanshika/hopgraph/internal/domain"
	"github.com/vanshika/hopgraph/internal/graph"
	"github.com/vanshika/hopgraph/internal/logging"
	"github.com/vanshika/hopgraph/internal/memgraph"
	"github.com/vanshika/hopgraph/internal/sqlitegraph"
)

const fixture = `
vertices:
  - {id: A, label: person}
  - {id: B, label: person}
edges:
  - {id: ab, label: knows, source: A, target: B}
`

func TestOpen_MemoryWithFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.yaml")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	ctx := context.Background()

	opened, err := Open(ctx, logging.Discard(), config.GraphConfig{Backend: config.BackendMemory, Fixture: path})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer opened.Close(ctx)

	if _, ok := opened.Store.(*memgraph.Store); !ok {
		t.Fatalf("expected memgraph store, got %T", opened.Store)
	}
	edges, err := opened.Store.EdgesOf(ctx, "A", domain.DirectionOut, "knows", domain.NoLimit)
	if err != nil || len(edges) != 1 {
		t.Fatalf("expected fixture edge, got %v %v", edges, err)
	}
}

func TestOpen_MemoryMissingFixture(t *testing.T) {
	_, err := Open(context.Background(), logging.Discard(), config.GraphConfig{
		Backend: config.BackendMemory,
		Fixture: filepath.Join(t.TempDir(), "absent.yaml"),
	})
	if err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	opened, err := Open(ctx, logging.Discard(), config.GraphConfig{
		Backend:    config.BackendSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "nested", "graph.db"),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := opened.Store.(*sqlitegraph.Store); !ok {
		t.Fatalf("expected sqlite store, got %T", opened.Store)
	}
	if err := opened.Store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := opened.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestOpen_Neo4jRequiresURI(t *testing.T) {
	_, err := Open(context.Background(), logging.Discard(), config.GraphConfig{Backend: config.BackendNeo4j})
	if !errors.Is(err, graph.ErrMissingURI) {
		t.Fatalf("expected ErrMissingURI, got %v", err)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), logging.Discard(), config.GraphConfig{Backend: "janus"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
