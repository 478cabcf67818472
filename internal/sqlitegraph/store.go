// Package sqlitegraph persists a labelled property graph in a SQLite file.
package sqlitegraph

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/vanshika/hopgraph/internal/domain"
	"github.com/vanshika/hopgraph/internal/traversal"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// ErrVertexNotFound is returned when an edge references a missing vertex.
var ErrVertexNotFound = errors.New("vertex not found")

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == MemoryPath {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS vertices (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  label TEXT NOT NULL,
  props TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_vertices_label ON vertices(label);
CREATE TABLE IF NOT EXISTS edge_labels (
  name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS edges (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  label TEXT NOT NULL,
  src TEXT NOT NULL,
  dst TEXT NOT NULL,
  props TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_edges_src_label ON edges(src, label, seq);
CREATE INDEX IF NOT EXISTS idx_edges_dst_label ON edges(dst, label, seq);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create graph tables: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DefineEdgeLabel registers an edge label ahead of any edge using it.
func (s *Store) DefineEdgeLabel(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT INTO edge_labels (name) VALUES (?) ON CONFLICT(name) DO NOTHING;`, name); err != nil {
		return fmt.Errorf("define edge label %q: %w", name, err)
	}
	return nil
}

func (s *Store) ResolveEdgeLabel(ctx context.Context, name string) (string, error) {
	var found string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM edge_labels WHERE name = ?;`, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %q", traversal.ErrUnknownLabel, name)
	}
	if err != nil {
		return "", fmt.Errorf("resolve edge label %q: %w", name, err)
	}
	return found, nil
}

// EdgesOf returns edges in insertion order. For domain.DirectionBoth outgoing
// edges come first and degree counts both halves.
func (s *Store) EdgesOf(ctx context.Context, vertexID string, dir domain.Direction, label string, degree int64) ([]domain.Edge, error) {
	var (
		query string
		args  []any
	)
	// LIMIT -1 is unbounded in SQLite, which lines up with domain.NoLimit.
	switch dir {
	case domain.DirectionOut:
		query = `SELECT id, label, src, dst, props FROM edges WHERE src = ? AND label = ? ORDER BY seq LIMIT ?;`
		args = []any{vertexID, label, degree}
	case domain.DirectionIn:
		query = `SELECT id, label, src, dst, props FROM edges WHERE dst = ? AND label = ? ORDER BY seq LIMIT ?;`
		args = []any{vertexID, label, degree}
	case domain.DirectionBoth:
		query = `
SELECT id, label, src, dst, props FROM (
  SELECT 0 AS half, seq, id, label, src, dst, props FROM edges WHERE src = ? AND label = ?
  UNION ALL
  SELECT 1 AS half, seq, id, label, src, dst, props FROM edges WHERE dst = ? AND label = ?
)
ORDER BY half, seq
LIMIT ?;`
		args = []any{vertexID, label, vertexID, label, degree}
	default:
		return nil, fmt.Errorf("unknown direction %q", dir)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("edges of %s: %w", vertexID, err)
	}
	defer rows.Close()

	var out []domain.Edge
	for rows.Next() {
		var (
			e     domain.Edge
			props string
		)
		if err := rows.Scan(&e.ID, &e.Label, &e.Source, &e.Target, &props); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		if e.Properties, err = decodeProps(props); err != nil {
			return nil, fmt.Errorf("edge %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}
	return out, nil
}

// VerticesByIDs returns the known vertices among ids in the order given.
func (s *Store) VerticesByIDs(ctx context.Context, ids []string) ([]domain.Vertex, error) {
	out := make([]domain.Vertex, 0, len(ids))
	for _, id := range ids {
		v, err := s.vertex(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) vertex(ctx context.Context, id string) (domain.Vertex, error) {
	v := domain.Vertex{ID: id}
	var props string
	err := s.db.QueryRowContext(ctx, `SELECT label, props FROM vertices WHERE id = ?;`, id).Scan(&v.Label, &props)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return v, err
		}
		return v, fmt.Errorf("load vertex %s: %w", id, err)
	}
	if v.Properties, err = decodeProps(props); err != nil {
		return v, fmt.Errorf("vertex %s: %w", id, err)
	}
	return v, nil
}

// FindVertices filters by label in SQL and by properties after decoding.
func (s *Store) FindVertices(ctx context.Context, label string, props map[string]any) ([]domain.Vertex, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, label, props FROM vertices
WHERE ? = '' OR label = ?
ORDER BY seq;
`, label, label)
	if err != nil {
		return nil, fmt.Errorf("find vertices: %w", err)
	}
	defer rows.Close()

	var out []domain.Vertex
	for rows.Next() {
		var (
			v   domain.Vertex
			raw string
		)
		if err := rows.Scan(&v.ID, &v.Label, &raw); err != nil {
			return nil, fmt.Errorf("scan vertex: %w", err)
		}
		if v.Properties, err = decodeProps(raw); err != nil {
			return nil, fmt.Errorf("vertex %s: %w", v.ID, err)
		}
		if domain.MatchesProperties(v.Properties, props) {
			out = append(out, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vertices: %w", err)
	}
	return out, nil
}

func (s *Store) UpsertVertex(ctx context.Context, v domain.Vertex) error {
	if v.ID == "" {
		return errors.New("vertex id is required")
	}
	props, err := encodeProps(v.Properties)
	if err != nil {
		return fmt.Errorf("vertex %s: %w", v.ID, err)
	}
	const stmt = `
INSERT INTO vertices (id, label, props)
VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET label = excluded.label, props = excluded.props;
`
	if _, err := s.db.ExecContext(ctx, stmt, v.ID, v.Label, props); err != nil {
		return fmt.Errorf("upsert vertex %s: %w", v.ID, err)
	}
	return nil
}

// UpsertEdge stores e, assigning a random id when e.ID is empty. Both endpoints
// must already exist.
func (s *Store) UpsertEdge(ctx context.Context, e domain.Edge) error {
	if e.Label == "" {
		return errors.New("edge label is required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	props, err := encodeProps(e.Properties)
	if err != nil {
		return fmt.Errorf("edge %s: %w", e.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin edge upsert: %w", err)
	}
	defer tx.Rollback()

	for _, id := range []string{e.Source, e.Target} {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM vertices WHERE id = ?;`, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %q", ErrVertexNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("check vertex %s: %w", id, err)
		}
	}

	const stmt = `
INSERT INTO edges (id, label, src, dst, props)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET label = excluded.label, src = excluded.src, dst = excluded.dst, props = excluded.props;
`
	if _, err := tx.ExecContext(ctx, stmt, e.ID, e.Label, e.Source, e.Target, props); err != nil {
		return fmt.Errorf("upsert edge %s: %w", e.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO edge_labels (name) VALUES (?) ON CONFLICT(name) DO NOTHING;`, e.Label); err != nil {
		return fmt.Errorf("register edge label %q: %w", e.Label, err)
	}
	return tx.Commit()
}

// Stats reports the number of vertices and edges stored.
func (s *Store) Stats(ctx context.Context) (vertices, edges int, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT (SELECT COUNT(*) FROM vertices), (SELECT COUNT(*) FROM edges);`).Scan(&vertices, &edges)
	if err != nil {
		err = fmt.Errorf("count graph: %w", err)
	}
	return vertices, edges, err
}

func encodeProps(props map[string]any) (string, error) {
	if len(props) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("encode properties: %w", err)
	}
	return string(raw), nil
}

func decodeProps(raw string) (map[string]any, error) {
	props := map[string]any{}
	if raw == "" {
		return props, nil
	}
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	return props, nil
}
