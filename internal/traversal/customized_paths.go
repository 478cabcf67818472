package traversal

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanshika/hopgraph/internal/domain"
)

// EdgeSource returns up to degree edges of a vertex with one label in one
// direction, in the storage engine's natural order. domain.NoLimit returns every
// matching edge.
type EdgeSource interface {
	EdgesOf(ctx context.Context, vertexID string, dir domain.Direction, label string, degree int64) ([]domain.Edge, error)
}

// LabelResolver maps an edge label name to the identifier understood by the
// EdgeSource. Unknown names must yield an error wrapping ErrUnknownLabel.
type LabelResolver interface {
	ResolveEdgeLabel(ctx context.Context, name string) (string, error)
}

// Cutoff names the limit that stopped an expansion early.
type Cutoff string

const (
	CutoffNone     Cutoff = "none"
	CutoffLimit    Cutoff = "limit"
	CutoffCapacity Cutoff = "capacity"
)

// Result is the outcome of one customized path traversal.
type Result struct {
	Paths []Path
	// Accessed counts the edges accepted into the path tree.
	Accessed int64
	Cutoff   Cutoff
}

// Traverser enumerates fixed-length paths step by step. It keeps no request
// state and may be shared between goroutines.
type Traverser struct {
	edges  EdgeSource
	labels LabelResolver
}

// New returns a Traverser reading edges from edges and resolving step labels
// through labels.
func New(edges EdgeSource, labels LabelResolver) *Traverser {
	return &Traverser{edges: edges, labels: labels}
}

type resolvedStep struct {
	domain.Step
	labelIDs []string
}

// CustomizedPaths enumerates every path of exactly len(steps) hops that starts
// at one of sources and never visits a vertex twice.
//
// capacity bounds the number of accepted edges over the whole expansion; when it
// fires before the final step completes the result is empty. When ranked is
// false and limit is finite, expansion stops as soon as limit paths have been
// produced on the final step. When ranked is true every path carries its edge
// weights and the caller is expected to apply TopN with limit.
func (t *Traverser) CustomizedPaths(ctx context.Context, sources []string, steps []domain.Step, ranked bool, capacity, limit int64) (*Result, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: the source vertices can't be empty", ErrInvalidArgument)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: the steps can't be empty", ErrInvalidArgument)
	}
	if err := checkBound("capacity", capacity); err != nil {
		return nil, err
	}
	if err := checkBound("limit", limit); err != nil {
		return nil, err
	}

	plan, err := t.resolve(ctx, steps)
	if err != nil {
		return nil, err
	}

	x := &expansion{
		edges:    t.edges,
		arena:    newNodeArena(ranked, len(sources)*4),
		ranked:   ranked,
		capacity: capacity,
		limit:    limit,
		cutoff:   CutoffNone,
	}

	current := newFrontier()
	for _, id := range sources {
		if _, seen := current.nodes[id]; seen {
			continue
		}
		current.add(id, x.arena.add(id, noParent, 0))
	}

	stepsLeft := len(plan)
	for _, step := range plan {
		stepsLeft--
		next, stop, err := x.expandStep(ctx, current, step, stepsLeft == 0)
		if err != nil {
			return nil, err
		}
		current = next
		if stop {
			break
		}
	}

	result := &Result{Paths: []Path{}, Accessed: x.accessed, Cutoff: x.cutoff}
	if stepsLeft != 0 {
		return result, nil
	}

	result.Paths = make([]Path, 0, current.size())
	for _, vertexID := range current.order {
		for _, node := range current.nodes[vertexID] {
			result.Paths = append(result.Paths, x.arena.path(node))
		}
	}
	return result, nil
}

func (t *Traverser) resolve(ctx context.Context, steps []domain.Step) ([]resolvedStep, error) {
	plan := make([]resolvedStep, len(steps))
	for i, step := range steps {
		switch step.Direction {
		case domain.DirectionOut, domain.DirectionIn, domain.DirectionBoth:
		default:
			return nil, fmt.Errorf("%w: step %d has unknown direction %q", ErrInvalidArgument, i, step.Direction)
		}
		if err := checkBound("degree", step.Degree); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}

		ids := make([]string, 0, len(step.Labels))
		for _, name := range step.Labels {
			id, err := t.labels.ResolveEdgeLabel(ctx, name)
			if err != nil {
				if errors.Is(err, ErrUnknownLabel) {
					return nil, fmt.Errorf("%w: step %d: %w", ErrInvalidArgument, i, err)
				}
				return nil, fmt.Errorf("resolve edge label %q: %w", name, err)
			}
			ids = append(ids, id)
		}
		plan[i] = resolvedStep{Step: step, labelIDs: ids}
	}
	return plan, nil
}

func checkBound(name string, value int64) error {
	if value == domain.NoLimit || value > 0 {
		return nil
	}
	return fmt.Errorf("%w: %s must be > 0 or == %d, but got %d", ErrInvalidArgument, name, domain.NoLimit, value)
}

// expansion holds the mutable state of one traversal.
type expansion struct {
	edges     EdgeSource
	arena     *nodeArena
	ranked    bool
	capacity  int64
	limit     int64
	pathCount int64
	accessed  int64
	cutoff    Cutoff
}

// expandStep builds the next frontier from current. The boolean is true when a
// cutoff fired; the frontier then holds whatever was built before it fired.
func (x *expansion) expandStep(ctx context.Context, current *frontier, step resolvedStep, last bool) (*frontier, bool, error) {
	next := newFrontier()
	for _, vertexID := range current.order {
		for _, node := range current.nodes[vertexID] {
			for _, label := range step.labelIDs {
				edges, err := x.edges.EdgesOf(ctx, vertexID, step.Direction, label, step.Degree)
				if err != nil {
					return nil, false, fmt.Errorf("edges of vertex %s with label %s: %w", vertexID, label, err)
				}
				for _, edge := range edges {
					target := edge.OtherVertex(vertexID)
					if x.arena.contains(node, target) {
						continue
					}

					weight, err := x.weightOf(step.Step, edge)
					if err != nil {
						return nil, false, err
					}
					next.add(target, x.arena.add(target, node, weight))

					if x.accept(last) {
						return next, true, nil
					}
				}
			}
		}
	}
	return next, false, nil
}

// accept counts one accepted edge and reports whether a cutoff fired.
func (x *expansion) accept(last bool) bool {
	x.accessed++
	if last && !x.ranked && x.limit != domain.NoLimit {
		x.pathCount++
		if x.pathCount >= x.limit {
			x.cutoff = CutoffLimit
			return true
		}
	}
	if x.capacity != domain.NoLimit && x.accessed >= x.capacity {
		x.cutoff = CutoffCapacity
		return true
	}
	return false
}

func (x *expansion) weightOf(step domain.Step, edge domain.Edge) (float64, error) {
	if !x.ranked {
		return 0, nil
	}
	if step.WeightBy == "" {
		return step.DefaultWeight, nil
	}
	raw, ok := edge.Properties[step.WeightBy]
	if !ok || raw == nil {
		return step.DefaultWeight, nil
	}
	weight, ok := domain.ToFloat64(raw)
	if !ok {
		return 0, fmt.Errorf("%w: edge %s property %q has value %v", ErrInvalidWeight, edge.ID, step.WeightBy, raw)
	}
	return weight, nil
}
