package traversal

import (
	"math"
	"reflect"
	"testing"

	"github.com/vanshika/hopgraph/internal/domain"
)

func weighted(name string, total float64) Path {
	return Path{Vertices: []string{"S", name}, Weights: []float64{total}, TotalWeight: total}
}

func leaves(paths []Path) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.Vertices[len(p.Vertices)-1]
	}
	return out
}

func TestTopN_NoTruncationKeepsOrder(t *testing.T) {
	paths := []Path{weighted("a", 3), weighted("b", 1), weighted("c", 2)}

	if got := leaves(TopN(paths, true, domain.NoLimit)); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("expected input order for unlimited, got %v", got)
	}
	if got := leaves(TopN(paths, true, 3)); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("expected input order when limit covers all paths, got %v", got)
	}
}

func TestTopN_Ascending(t *testing.T) {
	paths := []Path{weighted("a", 3), weighted("b", 1), weighted("c", 2), weighted("d", 5)}

	top := TopN(paths, true, 3)
	if got := leaves(top); !reflect.DeepEqual(got, []string{"b", "c", "a"}) {
		t.Fatalf("expected [b c a], got %v", got)
	}
	for i := 1; i < len(top); i++ {
		if top[i-1].TotalWeight > top[i].TotalWeight {
			t.Fatalf("weights not non-decreasing: %v", top)
		}
	}
	if got := leaves(paths); !reflect.DeepEqual(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("expected input slice untouched, got %v", got)
	}
}

func TestTopN_Descending(t *testing.T) {
	paths := []Path{weighted("a", 3), weighted("b", 1), weighted("c", 2), weighted("d", 5)}

	top := TopN(paths, false, 2)
	if got := leaves(top); !reflect.DeepEqual(got, []string{"d", "a"}) {
		t.Fatalf("expected [d a], got %v", got)
	}
}

func TestTopN_TiesKeepInputOrder(t *testing.T) {
	paths := []Path{weighted("a", 1), weighted("b", 0), weighted("c", 1), weighted("d", 1)}

	if got := leaves(TopN(paths, true, 3)); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Fatalf("expected [b a c], got %v", got)
	}
	if got := leaves(TopN(paths, false, 3)); !reflect.DeepEqual(got, []string{"a", "c", "d"}) {
		t.Fatalf("expected [a c d], got %v", got)
	}
}

func TestTopN_NaNSortsAsGreatest(t *testing.T) {
	paths := []Path{weighted("nan", math.NaN()), weighted("a", 4), weighted("b", 1)}

	if got := leaves(TopN(paths, true, 2)); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Fatalf("expected NaN last when ascending, got %v", got)
	}
	if got := leaves(TopN(paths, false, 2)); !reflect.DeepEqual(got, []string{"nan", "a"}) {
		t.Fatalf("expected NaN first when descending, got %v", got)
	}
}

func TestNodeArena_SharesAncestors(t *testing.T) {
	a := newNodeArena(true, 0)
	root := a.add("A", noParent, 0)
	b := a.add("B", root, 1.5)
	c := a.add("C", b, 2)
	d := a.add("D", b, 4)

	for i, parent := range a.parents {
		if parent != noParent && parent >= i {
			t.Fatalf("node %d has parent %d not below it", i, parent)
		}
	}
	if !a.contains(c, "A") || !a.contains(c, "C") || a.contains(c, "D") {
		t.Fatal("contains must follow only the node's own ancestry")
	}

	pc, pd := a.path(c), a.path(d)
	if !reflect.DeepEqual(pc.Vertices, []string{"A", "B", "C"}) || !reflect.DeepEqual(pd.Vertices, []string{"A", "B", "D"}) {
		t.Fatalf("unexpected vertices %v %v", pc.Vertices, pd.Vertices)
	}
	if !reflect.DeepEqual(pd.Weights, []float64{1.5, 4}) || pd.TotalWeight != 5.5 {
		t.Fatalf("unexpected weights %v total %v", pd.Weights, pd.TotalWeight)
	}
	if len(pc.Weights) != len(pc.Vertices)-1 {
		t.Fatalf("expected one weight per hop, got %v for %v", pc.Weights, pc.Vertices)
	}
}
