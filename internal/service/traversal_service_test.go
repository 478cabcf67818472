package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/vanshika/hopgraph/internal/domain"
	"github.com/vanshika/hopgraph/internal/logging"
	"github.com/vanshika/hopgraph/internal/memgraph"
	"github.com/vanshika/hopgraph/internal/traversal"
)

// weightedGraph has A->B (5), A->C (2), A->D (9) labelled knows, plus B->E created.
func weightedGraph(t *testing.T) *memgraph.Store {
	t.Helper()
	s := memgraph.New()
	ctx := context.Background()
	for _, v := range []domain.Vertex{
		{ID: "A", Label: "person", Properties: map[string]any{"name": "marko", "city": "Beijing"}},
		{ID: "B", Label: "person", Properties: map[string]any{"name": "vadas"}},
		{ID: "C", Label: "person", Properties: map[string]any{"name": "josh", "city": "Beijing"}},
		{ID: "D", Label: "person", Properties: map[string]any{"name": "peter"}},
		{ID: "E", Label: "software", Properties: map[string]any{"name": "lop"}},
	} {
		if err := s.UpsertVertex(ctx, v); err != nil {
			t.Fatalf("upsert vertex: %v", err)
		}
	}
	for _, e := range []domain.Edge{
		{ID: "ab", Label: "knows", Source: "A", Target: "B", Properties: map[string]any{"weight": 5}},
		{ID: "ac", Label: "knows", Source: "A", Target: "C", Properties: map[string]any{"weight": 2}},
		{ID: "ad", Label: "knows", Source: "A", Target: "D", Properties: map[string]any{"weight": 9}},
		{ID: "be", Label: "created", Source: "B", Target: "E", Properties: map[string]any{"kind": "primary"}},
	} {
		if err := s.UpsertEdge(ctx, e); err != nil {
			t.Fatalf("upsert edge: %v", err)
		}
	}
	return s
}

func knowsStep() domain.Step {
	return domain.Step{Direction: domain.DirectionOut, Labels: []string{"knows"}, WeightBy: "weight", Degree: domain.NoLimit}
}

func request(sort SortBy, limit int64) CustomizedPathsRequest {
	return CustomizedPathsRequest{
		Sources:  SourceSelector{IDs: []string{"A"}},
		Steps:    []domain.Step{knowsStep()},
		SortBy:   sort,
		Capacity: domain.NoLimit,
		Limit:    limit,
	}
}

func pathVertices(paths []traversal.Path) [][]string {
	out := make([][]string, len(paths))
	for i, p := range paths {
		out[i] = p.Vertices
	}
	return out
}

func TestCustomizedPaths_Ranking(t *testing.T) {
	svc := NewTraversalService(weightedGraph(t), logging.Discard())
	ctx := context.Background()

	incr, err := svc.CustomizedPaths(ctx, request(SortIncr, 1))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !incr.Ranked || len(incr.Paths) != 1 || incr.Paths[0].TotalWeight != 2 {
		t.Fatalf("expected [[A C]] weight 2, got %+v", incr.Paths)
	}
	if !reflect.DeepEqual(incr.Paths[0].Weights, []float64{2}) {
		t.Fatalf("expected per-edge weights [2], got %v", incr.Paths[0].Weights)
	}

	decr, err := svc.CustomizedPaths(ctx, request(SortDecr, 2))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := pathVertices(decr.Paths); !reflect.DeepEqual(got, [][]string{{"A", "D"}, {"A", "B"}}) {
		t.Fatalf("expected heaviest first, got %v", got)
	}
}

func TestCustomizedPaths_LowercaseSortBy(t *testing.T) {
	svc := NewTraversalService(weightedGraph(t), logging.Discard())
	ctx := context.Background()

	incr, err := svc.CustomizedPaths(ctx, request("incr", 1))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := pathVertices(incr.Paths); !reflect.DeepEqual(got, [][]string{{"A", "C"}}) {
		t.Fatalf("expected lightest path for incr, got %v", got)
	}

	decr, err := svc.CustomizedPaths(ctx, request(" Decr", 1))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := pathVertices(decr.Paths); !reflect.DeepEqual(got, [][]string{{"A", "D"}}) {
		t.Fatalf("expected heaviest path for decr, got %v", got)
	}

	none, err := svc.CustomizedPaths(ctx, request("none", 1))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if none.Ranked {
		t.Fatal("expected none to leave the result unranked")
	}
}

func TestCustomizedPaths_UnrankedLimitDuringExpansion(t *testing.T) {
	svc := NewTraversalService(weightedGraph(t), logging.Discard())

	res, err := svc.CustomizedPaths(context.Background(), request(SortNone, 1))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Ranked {
		t.Fatal("expected unranked result")
	}
	if got := pathVertices(res.Paths); !reflect.DeepEqual(got, [][]string{{"A", "B"}}) {
		t.Fatalf("expected first expanded path only, got %v", got)
	}
	if res.Paths[0].Weights != nil {
		t.Fatalf("expected no weights when unranked, got %v", res.Paths[0].Weights)
	}
	if res.Cutoff != traversal.CutoffLimit {
		t.Fatalf("expected limit cutoff, got %s", res.Cutoff)
	}
}

func TestCustomizedPaths_SourcesByID(t *testing.T) {
	svc := NewTraversalService(weightedGraph(t), logging.Discard())
	ctx := context.Background()

	req := request(SortNone, domain.NoLimit)
	req.Sources = SourceSelector{IDs: []string{"missing", "B", "A", "B"}}
	req.Steps = []domain.Step{{Direction: domain.DirectionBoth, Labels: []string{"knows", "created"}, Degree: domain.NoLimit}}

	res, err := svc.CustomizedPaths(ctx, req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// Sources keep request order (B then A); the frontier is keyed by target in
	// first-reached order.
	want := [][]string{{"B", "A"}, {"B", "E"}, {"A", "B"}, {"A", "C"}, {"A", "D"}}
	if got := pathVertices(res.Paths); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	req.Sources = SourceSelector{IDs: []string{"X", "Y"}}
	if _, err := svc.CustomizedPaths(ctx, req); !errors.Is(err, ErrNoSources) {
		t.Fatalf("expected ErrNoSources, got %v", err)
	}
}

func TestCustomizedPaths_SourcesByFilter(t *testing.T) {
	svc := NewTraversalService(weightedGraph(t), logging.Discard())
	ctx := context.Background()

	req := request(SortNone, domain.NoLimit)
	req.Sources = SourceSelector{Label: "person", Properties: map[string]any{"city": "Beijing"}}
	res, err := svc.CustomizedPaths(ctx, req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// C has no outgoing knows edge, so only A contributes.
	if len(res.Paths) != 3 {
		t.Fatalf("expected 3 paths from A, got %v", pathVertices(res.Paths))
	}

	req.Sources = SourceSelector{Label: "software", Properties: map[string]any{"name": "ripple"}}
	if _, err := svc.CustomizedPaths(ctx, req); !errors.Is(err, ErrNoSources) {
		t.Fatalf("expected ErrNoSources for no match, got %v", err)
	}

	req.Sources = SourceSelector{}
	if _, err := svc.CustomizedPaths(ctx, req); !errors.Is(err, ErrNoSources) {
		t.Fatalf("expected ErrNoSources for empty selector, got %v", err)
	}
}

func TestCustomizedPaths_WithVertex(t *testing.T) {
	svc := NewTraversalService(weightedGraph(t), logging.Discard())

	req := request(SortIncr, 2)
	req.WithVertex = true
	res, err := svc.CustomizedPaths(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var ids []string
	for _, v := range res.Vertices {
		ids = append(ids, v.ID)
	}
	if !reflect.DeepEqual(ids, []string{"A", "C", "B"}) {
		t.Fatalf("expected vertices in first-appearance order, got %v", ids)
	}
	if res.Vertices[1].Properties["name"] != "josh" {
		t.Fatalf("expected hydrated properties, got %+v", res.Vertices[1])
	}

	req.Sources = SourceSelector{IDs: []string{"E"}}
	res, err = svc.CustomizedPaths(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Vertices == nil || len(res.Vertices) != 0 || len(res.Paths) != 0 {
		t.Fatalf("expected empty vertices for empty result, got %+v", res)
	}
}

func TestCustomizedPaths_InvalidRequests(t *testing.T) {
	svc := NewTraversalService(weightedGraph(t), logging.Discard())
	ctx := context.Background()

	cases := map[string]func(*CustomizedPathsRequest){
		"bad sort":      func(r *CustomizedPathsRequest) { r.SortBy = "SIDEWAYS" },
		"unknown label": func(r *CustomizedPathsRequest) { r.Steps[0].Labels = []string{"likes"} },
		"zero capacity": func(r *CustomizedPathsRequest) { r.Capacity = 0 },
		"no steps":      func(r *CustomizedPathsRequest) { r.Steps = nil },
		"bad weight": func(r *CustomizedPathsRequest) {
			r.Steps[0].WeightBy = "kind"
			r.Sources = SourceSelector{IDs: []string{"B"}}
			r.Steps[0].Labels = []string{"created"}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := request(SortIncr, 1)
			mutate(&req)
			_, err := svc.CustomizedPaths(ctx, req)
			if err == nil || !IsInvalidRequest(err) {
				t.Fatalf("expected invalid request error, got %v", err)
			}
		})
	}
}

type failingStore struct {
	*memgraph.Store
	err error
}

func (f failingStore) EdgesOf(context.Context, string, domain.Direction, string, int64) ([]domain.Edge, error) {
	return nil, f.err
}

func TestCustomizedPaths_StorageError(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewTraversalService(failingStore{Store: weightedGraph(t), err: boom}, logging.Discard())

	_, err := svc.CustomizedPaths(context.Background(), request(SortNone, 1))
	if !errors.Is(err, boom) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if IsInvalidRequest(err) {
		t.Fatal("storage failure must not be classified as invalid request")
	}
}

func TestParseSortBy(t *testing.T) {
	for in, want := range map[string]SortBy{"incr": SortIncr, " DECR": SortDecr, "None": SortNone} {
		got, err := ParseSortBy(in)
		if err != nil || got != want {
			t.Errorf("ParseSortBy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseSortBy(""); !errors.Is(err, traversal.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for empty sort, got %v", err)
	}
}
