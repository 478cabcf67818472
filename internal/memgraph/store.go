// Package memgraph is an in-process graph store. Adjacency is kept in an ordered
// B-tree so edge lists come back in insertion order and degree-limited reads stop
// early.
package memgraph

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"github.com/vanshika/hopgraph/internal/dataset"
	"github.com/vanshika/hopgraph/internal/domain"
	"github.com/vanshika/hopgraph/internal/traversal"
)

// ErrVertexNotFound is returned when an edge references a missing vertex.
var ErrVertexNotFound = errors.New("vertex not found")

// adjEntry is one half of an edge as seen from vertex.
type adjEntry struct {
	vertex string
	dir    domain.Direction
	label  string
	seq    uint64
	edgeID string
}

func adjLess(a, b adjEntry) bool {
	if c := cmp.Compare(a.vertex, b.vertex); c != 0 {
		return c < 0
	}
	if c := cmp.Compare(a.dir, b.dir); c != 0 {
		return c < 0
	}
	if c := cmp.Compare(a.label, b.label); c != 0 {
		return c < 0
	}
	return a.seq < b.seq
}

type storedEdge struct {
	edge domain.Edge
	seq  uint64
}

// Store holds a whole graph in memory. It is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	vertices    map[string]domain.Vertex
	vertexOrder []string
	edges       map[string]storedEdge
	adj         *btree.BTreeG[adjEntry]
	labels      map[string]struct{}
	seq         uint64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		vertices: make(map[string]domain.Vertex),
		edges:    make(map[string]storedEdge),
		adj:      btree.NewBTreeG[adjEntry](adjLess),
		labels:   make(map[string]struct{}),
	}
}

// FromFile builds a store from a YAML dataset.
func FromFile(path string) (*Store, error) {
	ds, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	s := New()
	if err := s.Load(ds); err != nil {
		return nil, err
	}
	return s, nil
}

// Load adds every label, vertex and edge of ds to the store.
func (s *Store) Load(ds *dataset.Dataset) error {
	ctx := context.Background()
	for _, label := range ds.Labels() {
		if err := s.DefineEdgeLabel(ctx, label); err != nil {
			return err
		}
	}
	for _, v := range ds.DomainVertices() {
		if err := s.UpsertVertex(ctx, v); err != nil {
			return err
		}
	}
	for _, e := range ds.DomainEdges() {
		if err := s.UpsertEdge(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// DefineEdgeLabel registers an edge label so it resolves before any edge uses it.
func (s *Store) DefineEdgeLabel(_ context.Context, name string) error {
	if name == "" {
		return errors.New("edge label is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels[name] = struct{}{}
	return nil
}

func (s *Store) ResolveEdgeLabel(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.labels[name]; !ok {
		return "", fmt.Errorf("%w: %q", traversal.ErrUnknownLabel, name)
	}
	return name, nil
}

// EdgesOf returns the edges of vertexID in insertion order. For
// domain.DirectionBoth outgoing edges come first and degree counts both halves.
func (s *Store) EdgesOf(_ context.Context, vertexID string, dir domain.Direction, label string, degree int64) ([]domain.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var halves []domain.Direction
	switch dir {
	case domain.DirectionOut, domain.DirectionIn:
		halves = []domain.Direction{dir}
	case domain.DirectionBoth:
		halves = []domain.Direction{domain.DirectionOut, domain.DirectionIn}
	default:
		return nil, fmt.Errorf("unknown direction %q", dir)
	}

	var out []domain.Edge
	for _, half := range halves {
		pivot := adjEntry{vertex: vertexID, dir: half, label: label}
		s.adj.Ascend(pivot, func(item adjEntry) bool {
			if item.vertex != vertexID || item.dir != half || item.label != label {
				return false
			}
			if degree != domain.NoLimit && int64(len(out)) >= degree {
				return false
			}
			out = append(out, s.edges[item.edgeID].edge)
			return true
		})
		if degree != domain.NoLimit && int64(len(out)) >= degree {
			break
		}
	}
	return out, nil
}

// VerticesByIDs returns the known vertices among ids in the order given.
func (s *Store) VerticesByIDs(_ context.Context, ids []string) ([]domain.Vertex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Vertex, 0, len(ids))
	for _, id := range ids {
		if v, ok := s.vertices[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// FindVertices scans vertices in insertion order.
func (s *Store) FindVertices(_ context.Context, label string, props map[string]any) ([]domain.Vertex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Vertex
	for _, id := range s.vertexOrder {
		v := s.vertices[id]
		if label != "" && v.Label != label {
			continue
		}
		if !domain.MatchesProperties(v.Properties, props) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) UpsertVertex(_ context.Context, v domain.Vertex) error {
	if v.ID == "" {
		return errors.New("vertex id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.vertices[v.ID]; !exists {
		s.vertexOrder = append(s.vertexOrder, v.ID)
	}
	v.Properties = maps.Clone(v.Properties)
	s.vertices[v.ID] = v
	return nil
}

// UpsertEdge stores e, assigning a random id when e.ID is empty. Re-upserting an
// existing id keeps its position in adjacency order.
func (s *Store) UpsertEdge(_ context.Context, e domain.Edge) error {
	if e.Label == "" {
		return errors.New("edge label is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []string{e.Source, e.Target} {
		if _, ok := s.vertices[id]; !ok {
			return fmt.Errorf("%w: %q", ErrVertexNotFound, id)
		}
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Properties = maps.Clone(e.Properties)

	seq := s.seq
	if prev, ok := s.edges[e.ID]; ok {
		seq = prev.seq
		s.unlink(prev)
	} else {
		s.seq++
	}

	stored := storedEdge{edge: e, seq: seq}
	s.edges[e.ID] = stored
	s.adj.Set(adjEntry{vertex: e.Source, dir: domain.DirectionOut, label: e.Label, seq: seq, edgeID: e.ID})
	s.adj.Set(adjEntry{vertex: e.Target, dir: domain.DirectionIn, label: e.Label, seq: seq, edgeID: e.ID})
	s.labels[e.Label] = struct{}{}
	return nil
}

func (s *Store) unlink(prev storedEdge) {
	s.adj.Delete(adjEntry{vertex: prev.edge.Source, dir: domain.DirectionOut, label: prev.edge.Label, seq: prev.seq})
	s.adj.Delete(adjEntry{vertex: prev.edge.Target, dir: domain.DirectionIn, label: prev.edge.Label, seq: prev.seq})
}

// Stats reports the number of vertices and edges held.
func (s *Store) Stats() (vertices, edges int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vertices), len(s.edges)
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}
