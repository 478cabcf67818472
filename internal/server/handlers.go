package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vanshika/hopgraph/internal/config"
	"github.com/vanshika/hopgraph/internal/domain"
	"github.com/vanshika/hopgraph/internal/service"
)

// PathFinder is the service contract used by the HTTP handlers.
type PathFinder interface {
	CustomizedPaths(ctx context.Context, req service.CustomizedPathsRequest) (*service.CustomizedPathsResult, error)
}

// APIHandlers exposes HTTP handlers for the traverser API.
type APIHandlers struct {
	logger    *slog.Logger
	service   PathFinder
	graphName string
	defaults  config.TraversalConfig
}

// NewAPIHandlers constructs an APIHandlers instance. graphName is the only
// value accepted in /graphs/{graph}/... routes.
func NewAPIHandlers(logger *slog.Logger, svc PathFinder, graphName string, defaults config.TraversalConfig) *APIHandlers {
	return &APIHandlers{
		logger:    logger,
		service:   svc,
		graphName: graphName,
		defaults:  defaults,
	}
}

func (h *APIHandlers) handleCustomizedPaths(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	h.customizedPaths(w, r)
}

func (h *APIHandlers) handleGraphCustomizedPaths(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if graph := r.PathValue("graph"); graph != h.graphName {
		writeError(w, http.StatusNotFound, fmt.Sprintf("graph %q does not exist", graph))
		return
	}
	h.customizedPaths(w, r)
}

func (h *APIHandlers) customizedPaths(w http.ResponseWriter, r *http.Request) {
	var req customizedPathsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request payload: %v", err))
		return
	}

	input, err := req.toServiceInput(h.defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.CustomizedPaths(r.Context(), input)
	if err != nil {
		if service.IsInvalidRequest(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to compute customized paths", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, "failed to compute customized paths")
		return
	}

	respondJSON(w, http.StatusCreated, newCustomizedPathsResponse(result, input.WithVertex))
}

type customizedPathsRequest struct {
	Sources    *sourcesRequest `json:"sources"`
	Steps      []stepRequest   `json:"steps"`
	SortBy     json.RawMessage `json:"sort_by"`
	Capacity   *int64          `json:"capacity"`
	Limit      *int64          `json:"limit"`
	WithVertex bool            `json:"with_vertex"`
}

type sourcesRequest struct {
	IDs        []any          `json:"ids"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties"`
}

type stepRequest struct {
	Direction     *string  `json:"direction"`
	Labels        []string `json:"labels"`
	WeightBy      string   `json:"weight_by"`
	DefaultWeight *float64 `json:"default_weight"`
	Degree        *int64   `json:"degree"`
}

func (req customizedPathsRequest) toServiceInput(defaults config.TraversalConfig) (service.CustomizedPathsRequest, error) {
	if req.Sources == nil {
		return service.CustomizedPathsRequest{}, errors.New("the sources of request can't be null")
	}
	if len(req.Steps) == 0 {
		return service.CustomizedPathsRequest{}, errors.New("the steps of request can't be empty")
	}

	sortBy := service.SortNone
	if len(req.SortBy) > 0 {
		var raw *string
		if err := json.Unmarshal(req.SortBy, &raw); err != nil {
			return service.CustomizedPathsRequest{}, fmt.Errorf("invalid sort_by: %w", err)
		}
		if raw == nil {
			return service.CustomizedPathsRequest{}, errors.New("the sort_by of request can't be null")
		}
		parsed, err := service.ParseSortBy(*raw)
		if err != nil {
			return service.CustomizedPathsRequest{}, err
		}
		sortBy = parsed
	}

	ids := make([]string, 0, len(req.Sources.IDs))
	for i, raw := range req.Sources.IDs {
		id, err := vertexID(raw)
		if err != nil {
			return service.CustomizedPathsRequest{}, fmt.Errorf("sources.ids[%d]: %w", i, err)
		}
		ids = append(ids, id)
	}

	steps := make([]domain.Step, 0, len(req.Steps))
	for i, s := range req.Steps {
		step, err := s.toDomain(defaults)
		if err != nil {
			return service.CustomizedPathsRequest{}, fmt.Errorf("steps[%d]: %w", i, err)
		}
		steps = append(steps, step)
	}

	out := service.CustomizedPathsRequest{
		Sources: service.SourceSelector{
			IDs:        ids,
			Label:      req.Sources.Label,
			Properties: plainNumbers(req.Sources.Properties),
		},
		Steps:      steps,
		SortBy:     sortBy,
		Capacity:   defaults.DefaultCapacity,
		Limit:      defaults.DefaultLimit,
		WithVertex: req.WithVertex,
	}
	if req.Capacity != nil {
		out.Capacity = *req.Capacity
	}
	if req.Limit != nil {
		out.Limit = *req.Limit
	}
	return out, nil
}

func (s stepRequest) toDomain(defaults config.TraversalConfig) (domain.Step, error) {
	step := domain.Step{
		Direction: domain.DirectionBoth,
		Labels:    s.Labels,
		WeightBy:  s.WeightBy,
		Degree:    defaults.DefaultDegree,
	}
	if s.Direction != nil {
		dir, err := domain.ParseDirection(*s.Direction)
		if err != nil {
			return domain.Step{}, err
		}
		step.Direction = dir
	}
	if s.DefaultWeight != nil {
		step.DefaultWeight = *s.DefaultWeight
	}
	if s.Degree != nil {
		step.Degree = *s.Degree
	}
	return step, nil
}

// vertexID accepts string ids and integral numeric ids.
func vertexID(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", errors.New("vertex id can't be empty")
		}
		return v, nil
	case json.Number:
		if _, err := v.Int64(); err != nil {
			return "", fmt.Errorf("vertex id %s is not an integer", v)
		}
		return v.String(), nil
	default:
		return "", fmt.Errorf("unsupported vertex id %v", raw)
	}
}

// plainNumbers turns json.Number values into int64 or float64 so property
// filters compare numerically.
func plainNumbers(props map[string]any) map[string]any {
	if len(props) == 0 {
		return props
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				v = i
			} else if f, err := n.Float64(); err == nil {
				v = f
			}
		}
		out[k] = v
	}
	return out
}

type customizedPathsResponse struct {
	Paths    []pathResponse    `json:"paths"`
	Vertices *[]vertexResponse `json:"vertices,omitempty"`
}

type pathResponse struct {
	Objects []string  `json:"objects"`
	Weights []float64 `json:"weights,omitempty"`
}

type vertexResponse struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

func newCustomizedPathsResponse(result *service.CustomizedPathsResult, withVertex bool) customizedPathsResponse {
	resp := customizedPathsResponse{Paths: make([]pathResponse, 0, len(result.Paths))}
	for _, p := range result.Paths {
		path := pathResponse{Objects: p.Vertices}
		if result.Ranked {
			path.Weights = p.Weights
		}
		resp.Paths = append(resp.Paths, path)
	}

	if withVertex {
		vertices := make([]vertexResponse, 0, len(result.Vertices))
		for _, v := range result.Vertices {
			props := v.Properties
			if props == nil {
				props = map[string]any{}
			}
			vertices = append(vertices, vertexResponse{ID: v.ID, Label: v.Label, Type: "vertex", Properties: props})
		}
		resp.Vertices = &vertices
	}
	return resp
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	decoder.UseNumber()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
