package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vanshika/hopgraph/internal/domain"
	"github.com/vanshika/hopgraph/internal/metrics"
	"github.com/vanshika/hopgraph/internal/telemetry"
	"github.com/vanshika/hopgraph/internal/traversal"
)

// GraphStore is the storage contract required by the traversal service.
type GraphStore interface {
	traversal.EdgeSource
	traversal.LabelResolver
	VerticesByIDs(ctx context.Context, ids []string) ([]domain.Vertex, error)
	FindVertices(ctx context.Context, label string, props map[string]any) ([]domain.Vertex, error)
}

// TraversalService resolves request sources, runs the customized path traversal
// and ranks, hydrates and records the result.
type TraversalService struct {
	store     GraphStore
	traverser *traversal.Traverser
	logger    *slog.Logger
	tracer    trace.Tracer
	nowFn     func() time.Time
}

// NewTraversalService wires a service over store.
func NewTraversalService(store GraphStore, logger *slog.Logger) *TraversalService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TraversalService{
		store:     store,
		traverser: traversal.New(store, store),
		logger:    logger,
		tracer:    telemetry.Tracer(),
		nowFn:     time.Now,
	}
}

// CustomizedPaths runs one customized path query. With SortBy NONE the limit is
// applied during expansion; otherwise every path is weighted and the best Limit
// paths are kept.
func (s *TraversalService) CustomizedPaths(ctx context.Context, req CustomizedPathsRequest) (*CustomizedPathsResult, error) {
	// Normalized before use so ranking and metric labels see INCR, DECR or NONE.
	sortBy, sortErr := ParseSortBy(string(req.SortBy))
	req.SortBy = sortBy
	sortLabel := string(sortBy)
	if sortErr != nil {
		sortLabel = "invalid"
	}

	ctx, span := s.tracer.Start(ctx, "traversal.customized_paths", trace.WithAttributes(
		attribute.String("sort_by", sortLabel),
		attribute.Int("steps", len(req.Steps)),
		attribute.Int64("capacity", req.Capacity),
		attribute.Int64("limit", req.Limit),
	))
	defer span.End()

	start := s.nowFn()
	var res *CustomizedPathsResult
	err := sortErr
	if err == nil {
		res, err = s.customizedPaths(ctx, req)
	}
	metrics.TraversalDuration.Observe(s.nowFn().Sub(start).Seconds())

	if err != nil {
		outcome := "error"
		if IsInvalidRequest(err) {
			outcome = "invalid"
		} else {
			s.logger.Error("customized paths failed", slog.String("sort_by", sortLabel), slog.Any("error", err))
		}
		metrics.TraversalsTotal.WithLabelValues(sortLabel, outcome).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.TraversalsTotal.WithLabelValues(sortLabel, "ok").Inc()
	metrics.PathsReturned.Observe(float64(len(res.Paths)))
	metrics.EdgesAccessed.Observe(float64(res.Accessed))
	if res.Cutoff != traversal.CutoffNone {
		metrics.TraversalCutoffs.WithLabelValues(string(res.Cutoff)).Inc()
	}
	span.SetAttributes(
		attribute.Int("paths", len(res.Paths)),
		attribute.Int64("edges_accessed", res.Accessed),
		attribute.String("cutoff", string(res.Cutoff)),
	)
	return res, nil
}

func (s *TraversalService) customizedPaths(ctx context.Context, req CustomizedPathsRequest) (*CustomizedPathsResult, error) {
	sources, err := s.resolveSources(ctx, req.Sources)
	if err != nil {
		return nil, err
	}

	ranked := req.SortBy != SortNone
	s.logger.Debug("customized paths",
		slog.Any("sources", sources),
		slog.Any("steps", req.Steps),
		slog.String("sort_by", string(req.SortBy)),
		slog.Int64("capacity", req.Capacity),
		slog.Int64("limit", req.Limit),
	)

	res, err := s.traverser.CustomizedPaths(ctx, sources, req.Steps, ranked, req.Capacity, req.Limit)
	if err != nil {
		return nil, err
	}

	paths := res.Paths
	if ranked {
		paths = traversal.TopN(paths, req.SortBy == SortIncr, req.Limit)
	}

	out := &CustomizedPathsResult{
		Paths:    paths,
		Ranked:   ranked,
		Accessed: res.Accessed,
		Cutoff:   res.Cutoff,
	}
	if req.WithVertex {
		if out.Vertices, err = s.hydrate(ctx, paths); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *TraversalService) resolveSources(ctx context.Context, sel SourceSelector) ([]string, error) {
	if len(sel.IDs) > 0 {
		found, err := s.store.VerticesByIDs(ctx, sel.IDs)
		if err != nil {
			return nil, fmt.Errorf("load source vertices: %w", err)
		}
		ids := inRequestOrder(sel.IDs, found)
		if len(ids) == 0 {
			return nil, fmt.Errorf("%w: none of the source vertices %v exist", ErrNoSources, sel.IDs)
		}
		return ids, nil
	}

	if sel.Label == "" && len(sel.Properties) == 0 {
		return nil, fmt.Errorf("%w: no source vertices provided", ErrNoSources)
	}
	found, err := s.store.FindVertices(ctx, sel.Label, sel.Properties)
	if err != nil {
		return nil, fmt.Errorf("find source vertices: %w", err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: no vertex matches label %q and properties %v", ErrNoSources, sel.Label, sel.Properties)
	}
	ids := make([]string, len(found))
	for i, v := range found {
		ids[i] = v.ID
	}
	return ids, nil
}

// hydrate loads every vertex appearing on paths, in first-appearance order.
func (s *TraversalService) hydrate(ctx context.Context, paths []traversal.Path) ([]domain.Vertex, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, p := range paths {
		for _, id := range p.Vertices {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []domain.Vertex{}, nil
	}

	found, err := s.store.VerticesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load path vertices: %w", err)
	}
	byID := make(map[string]domain.Vertex, len(found))
	for _, v := range found {
		byID[v.ID] = v
	}
	out := make([]domain.Vertex, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// inRequestOrder keeps the requested ids that were found, without duplicates.
func inRequestOrder(requested []string, found []domain.Vertex) []string {
	exists := make(map[string]bool, len(found))
	for _, v := range found {
		exists[v.ID] = true
	}
	ids := make([]string, 0, len(found))
	for _, id := range requested {
		if exists[id] {
			ids = append(ids, id)
			exists[id] = false
		}
	}
	return ids
}
