package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/vanshika/hopgraph/internal/domain"
	"github.com/vanshika/hopgraph/internal/graph"
	"github.com/vanshika/hopgraph/internal/traversal"
)

// Repository is the Neo4j-backed graph store. Vertices are nodes labelled
// :Vertex carrying an `id` and a `label` property; edges are relationships whose
// type is the edge label and which carry an `id` property.
type Repository struct {
	client graph.Client

	labelsMu   sync.RWMutex
	edgeLabels map[string]struct{}
	labelGroup singleflight.Group
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{
		client:     client,
		edgeLabels: make(map[string]struct{}),
	}
}

// EdgesOf returns up to degree edges of vertexID with the given relationship
// type, in the order the database produces them.
func (r *Repository) EdgesOf(ctx context.Context, vertexID string, dir domain.Direction, label string, degree int64) ([]domain.Edge, error) {
	query, err := edgesOfQuery(dir, label, degree)
	if err != nil {
		return nil, err
	}
	params := map[string]any{"vertexId": vertexID}
	if degree != domain.NoLimit {
		params["degree"] = degree
	}

	res, err := r.client.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("edges of %s: %w", vertexID, err)
	}

	edges := make([]domain.Edge, 0, len(res.Records))
	for _, record := range res.Records {
		edges = append(edges, domain.Edge{
			ID:         toString(record["edgeId"]),
			Label:      toString(record["label"]),
			Source:     toString(record["sourceId"]),
			Target:     toString(record["targetId"]),
			Properties: withoutKeys(toMap(record["props"]), "id"),
		})
	}
	return edges, nil
}

// ResolveEdgeLabel checks name against the relationship types known to the
// database. The type list is cached and refreshed on a miss; concurrent misses
// share one refresh.
func (r *Repository) ResolveEdgeLabel(ctx context.Context, name string) (string, error) {
	if r.knownEdgeLabel(name) {
		return name, nil
	}

	_, err, _ := r.labelGroup.Do("edge-labels", func() (any, error) {
		return nil, r.refreshEdgeLabels(ctx)
	})
	if err != nil {
		return "", err
	}
	if r.knownEdgeLabel(name) {
		return name, nil
	}
	return "", fmt.Errorf("%w: %q", traversal.ErrUnknownLabel, name)
}

func (r *Repository) knownEdgeLabel(name string) bool {
	r.labelsMu.RLock()
	defer r.labelsMu.RUnlock()
	_, ok := r.edgeLabels[name]
	return ok
}

func (r *Repository) refreshEdgeLabels(ctx context.Context) error {
	res, err := r.client.ExecuteRead(ctx, edgeLabelsCypher, nil)
	if err != nil {
		return fmt.Errorf("list relationship types: %w", err)
	}
	labels := make(map[string]struct{}, len(res.Records))
	for _, record := range res.Records {
		if name := toString(record["label"]); name != "" {
			labels[name] = struct{}{}
		}
	}

	r.labelsMu.Lock()
	r.edgeLabels = labels
	r.labelsMu.Unlock()
	return nil
}

// VerticesByIDs returns the vertices that exist among ids. Missing ids are
// skipped.
func (r *Repository) VerticesByIDs(ctx context.Context, ids []string) ([]domain.Vertex, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	res, err := r.client.ExecuteRead(ctx, verticesByIDsCypher, map[string]any{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("vertices by ids: %w", err)
	}
	return vertexRecords(res), nil
}

// FindVertices returns vertices with the given label (any label when empty)
// whose properties equal every entry of props.
func (r *Repository) FindVertices(ctx context.Context, label string, props map[string]any) ([]domain.Vertex, error) {
	if props == nil {
		props = map[string]any{}
	}
	res, err := r.client.ExecuteRead(ctx, findVerticesCypher, map[string]any{
		"label": label,
		"props": props,
	})
	if err != nil {
		return nil, fmt.Errorf("find vertices with label %q: %w", label, err)
	}
	return vertexRecords(res), nil
}

// UpsertVertex creates or updates a vertex and replaces its label.
func (r *Repository) UpsertVertex(ctx context.Context, v domain.Vertex) error {
	if v.ID == "" {
		return errors.New("vertex id is required")
	}
	params := map[string]any{
		"id":    v.ID,
		"label": v.Label,
		"props": withoutKeys(v.Properties, "id", "label"),
	}
	if _, err := r.client.ExecuteWrite(ctx, upsertVertexCypher, params); err != nil {
		return fmt.Errorf("upsert vertex %s: %w", v.ID, err)
	}
	return nil
}

// UpsertEdge creates or updates an edge between two existing vertices. An
// edge without an id gets a generated one.
func (r *Repository) UpsertEdge(ctx context.Context, e domain.Edge) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Source == "" || e.Target == "" {
		return errors.New("both source and target vertex ids are required")
	}
	typ, err := quoteIdentifier(e.Label)
	if err != nil {
		return err
	}
	params := map[string]any{
		"edgeId":   e.ID,
		"sourceId": e.Source,
		"targetId": e.Target,
		"props":    withoutKeys(e.Properties, "id"),
	}
	if _, err := r.client.ExecuteWrite(ctx, fmt.Sprintf(upsertEdgeCypherTemplate, typ), params); err != nil {
		return fmt.Errorf("upsert edge %s: %w", e.ID, err)
	}

	r.labelsMu.Lock()
	r.edgeLabels[e.Label] = struct{}{}
	r.labelsMu.Unlock()
	return nil
}

// EnsureSchema creates the uniqueness constraint that backs vertex lookups.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.client.ExecuteWrite(ctx, vertexConstraintCypher, nil); err != nil {
		return fmt.Errorf("create vertex constraint: %w", err)
	}
	return nil
}

// Ping verifies that the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.VerifyConnectivity(ctx)
}

func edgesOfQuery(dir domain.Direction, label string, degree int64) (string, error) {
	typ, err := quoteIdentifier(label)
	if err != nil {
		return "", err
	}

	var pattern string
	switch dir {
	case domain.DirectionOut:
		pattern = fmt.Sprintf("-[e:%s]->", typ)
	case domain.DirectionIn:
		pattern = fmt.Sprintf("<-[e:%s]-", typ)
	case domain.DirectionBoth:
		pattern = fmt.Sprintf("-[e:%s]-", typ)
	default:
		return "", fmt.Errorf("unknown direction %q", dir)
	}

	limit := ""
	if degree != domain.NoLimit {
		limit = "LIMIT $degree"
	}
	return fmt.Sprintf(edgesOfCypherTemplate, pattern, limit), nil
}

// quoteIdentifier backtick-quotes a relationship type for interpolation.
func quoteIdentifier(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("edge label is required")
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`", nil
}

func vertexRecords(res graph.Result) []domain.Vertex {
	vertices := make([]domain.Vertex, 0, len(res.Records))
	for _, record := range res.Records {
		vertices = append(vertices, domain.Vertex{
			ID:         toString(record["id"]),
			Label:      toString(record["label"]),
			Properties: withoutKeys(toMap(record["props"]), "id", "label"),
		})
	}
	return vertices
}

func withoutKeys(src map[string]any, keys ...string) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	for _, k := range keys {
		delete(dst, k)
	}
	return dst
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func toMap(val any) map[string]any {
	switch v := val.(type) {
	case map[string]any:
		return v
	case graph.NodeValue:
		return v.Properties
	case graph.RelationshipValue:
		return v.Properties
	default:
		return nil
	}
}

const edgeLabelsCypher = `
CALL db.relationshipTypes() YIELD relationshipType
RETURN relationshipType AS label
`

const edgesOfCypherTemplate = `
MATCH (v:Vertex {id: $vertexId})%s(o:Vertex)
RETURN e.id AS edgeId,
       type(e) AS label,
       startNode(e).id AS sourceId,
       endNode(e).id AS targetId,
       properties(e) AS props
%s
`

const verticesByIDsCypher = `
MATCH (v:Vertex)
WHERE v.id IN $ids
RETURN v.id AS id, v.label AS label, properties(v) AS props
`

const findVerticesCypher = `
MATCH (v:Vertex)
WHERE ($label = "" OR v.label = $label)
  AND all(k IN keys($props) WHERE v[k] = $props[k])
RETURN v.id AS id, v.label AS label, properties(v) AS props
`

const upsertVertexCypher = `
MERGE (v:Vertex {id: $id})
SET v += $props,
    v.label = $label
RETURN v.id AS id
`

const upsertEdgeCypherTemplate = `
MATCH (s:Vertex {id: $sourceId})
MATCH (t:Vertex {id: $targetId})
MERGE (s)-[e:%s {id: $edgeId}]->(t)
SET e += $props
RETURN e.id AS edgeId
`

const vertexConstraintCypher = `
CREATE CONSTRAINT vertex_id IF NOT EXISTS
FOR (v:Vertex) REQUIRE v.id IS UNIQUE
`
