package sqlitegraph

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vanshika/hopgraph/internal/domain"
	"github.com/vanshika/hopgraph/internal/traversal"
)

func openSeeded(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, MemoryPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	for _, id := range []string{"A", "B", "C", "D"} {
		v := domain.Vertex{ID: id, Label: "person", Properties: map[string]any{"name": id}}
		if err := s.UpsertVertex(ctx, v); err != nil {
			t.Fatalf("upsert vertex: %v", err)
		}
	}
	edges := []domain.Edge{
		{ID: "ab", Label: "knows", Source: "A", Target: "B", Properties: map[string]any{"weight": 1.5}},
		{ID: "ac", Label: "knows", Source: "A", Target: "C"},
		{ID: "da", Label: "knows", Source: "D", Target: "A"},
		{ID: "ad", Label: "created", Source: "A", Target: "D"},
	}
	for _, e := range edges {
		if err := s.UpsertEdge(ctx, e); err != nil {
			t.Fatalf("upsert edge: %v", err)
		}
	}
	return s
}

func ids(edges []domain.Edge) []string {
	out := []string{}
	for _, e := range edges {
		out = append(out, e.ID)
	}
	return out
}

func TestStore_EdgesOf(t *testing.T) {
	s := openSeeded(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		dir    domain.Direction
		label  string
		degree int64
		want   []string
	}{
		{"out", domain.DirectionOut, "knows", domain.NoLimit, []string{"ab", "ac"}},
		{"in", domain.DirectionIn, "knows", domain.NoLimit, []string{"da"}},
		{"both", domain.DirectionBoth, "knows", domain.NoLimit, []string{"ab", "ac", "da"}},
		{"degree", domain.DirectionOut, "knows", 1, []string{"ab"}},
		{"degree spans halves", domain.DirectionBoth, "knows", 2, []string{"ab", "ac"}},
		{"unused label", domain.DirectionOut, "likes", domain.NoLimit, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			edges, err := s.EdgesOf(ctx, "A", tc.dir, tc.label, tc.degree)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := ids(edges); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestStore_EdgePropertiesRoundTrip(t *testing.T) {
	s := openSeeded(t)

	edges, err := s.EdgesOf(context.Background(), "B", domain.DirectionIn, "knows", domain.NoLimit)
	if err != nil || len(edges) != 1 {
		t.Fatalf("expected one edge, got %v %v", edges, err)
	}
	w, ok := domain.ToFloat64(edges[0].Properties["weight"])
	if !ok || w != 1.5 {
		t.Fatalf("expected weight 1.5, got %#v", edges[0].Properties["weight"])
	}
	if edges[0].OtherVertex("B") != "A" {
		t.Fatalf("unexpected endpoints %+v", edges[0])
	}
}

func TestStore_UpsertEdge(t *testing.T) {
	s := openSeeded(t)
	ctx := context.Background()

	if err := s.UpsertEdge(ctx, domain.Edge{Label: "knows", Source: "A", Target: "Z"}); !errors.Is(err, ErrVertexNotFound) {
		t.Fatalf("expected ErrVertexNotFound, got %v", err)
	}
	if err := s.UpsertEdge(ctx, domain.Edge{ID: "ab", Label: "knows", Source: "A", Target: "B", Properties: map[string]any{"weight": 3}}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	edges, _ := s.EdgesOf(ctx, "A", domain.DirectionOut, "knows", domain.NoLimit)
	if got := ids(edges); !reflect.DeepEqual(got, []string{"ab", "ac"}) {
		t.Fatalf("expected order kept after update, got %v", got)
	}
	if edges[0].Properties["weight"] != float64(3) {
		t.Fatalf("expected updated weight, got %#v", edges[0].Properties["weight"])
	}

	if err := s.UpsertEdge(ctx, domain.Edge{Label: "likes", Source: "B", Target: "C"}); err != nil {
		t.Fatalf("upsert without id: %v", err)
	}
	if v, e, err := s.Stats(ctx); err != nil || v != 4 || e != 5 {
		t.Fatalf("expected 4 vertices 5 edges, got %d %d %v", v, e, err)
	}
}

func TestStore_ResolveEdgeLabel(t *testing.T) {
	s := openSeeded(t)
	ctx := context.Background()

	if _, err := s.ResolveEdgeLabel(ctx, "created"); err != nil {
		t.Fatalf("expected created to resolve, got %v", err)
	}
	if _, err := s.ResolveEdgeLabel(ctx, "likes"); !errors.Is(err, traversal.ErrUnknownLabel) {
		t.Fatalf("expected ErrUnknownLabel, got %v", err)
	}
	if err := s.DefineEdgeLabel(ctx, "likes"); err != nil {
		t.Fatalf("define: %v", err)
	}
	if _, err := s.ResolveEdgeLabel(ctx, "likes"); err != nil {
		t.Fatalf("expected likes to resolve, got %v", err)
	}
}

func TestStore_Vertices(t *testing.T) {
	s := openSeeded(t)
	ctx := context.Background()

	found, err := s.FindVertices(ctx, "person", map[string]any{"name": "C"})
	if err != nil || len(found) != 1 || found[0].ID != "C" {
		t.Fatalf("expected C, got %+v %v", found, err)
	}
	all, _ := s.FindVertices(ctx, "", nil)
	if len(all) != 4 || all[0].ID != "A" {
		t.Fatalf("expected 4 vertices in insertion order, got %+v", all)
	}

	got, err := s.VerticesByIDs(ctx, []string{"D", "nope", "B"})
	if err != nil {
		t.Fatalf("by ids: %v", err)
	}
	if len(got) != 2 || got[0].ID != "D" || got[1].Properties["name"] != "B" {
		t.Fatalf("unexpected vertices %+v", got)
	}
}

func TestStore_DrivesRankedTraversal(t *testing.T) {
	s := openSeeded(t)
	tr := traversal.New(s, s)

	res, err := tr.CustomizedPaths(context.Background(), []string{"A"}, []domain.Step{
		{Direction: domain.DirectionOut, Labels: []string{"knows"}, WeightBy: "weight", DefaultWeight: 4, Degree: domain.NoLimit},
	}, true, domain.NoLimit, 1)
	if err != nil {
		t.Fatalf("traverse: %v", err)
	}
	top := traversal.TopN(res.Paths, true, 1)
	if len(top) != 1 || top[0].TotalWeight != 1.5 {
		t.Fatalf("expected lightest path with weight 1.5, got %+v", top)
	}
}

func TestOpen_FileReopens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "graph.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.UpsertVertex(ctx, domain.Vertex{ID: "A", Label: "person"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if v, _, err := s.Stats(ctx); err != nil || v != 1 {
		t.Fatalf("expected persisted vertex, got %d %v", v, err)
	}
}
