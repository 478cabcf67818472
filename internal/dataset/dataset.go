// Package dataset reads and writes labelled property graphs as YAML documents.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vanshika/hopgraph/internal/domain"
)

// Dataset is the on-disk form of a graph.
type Dataset struct {
	VertexLabels []string `yaml:"vertex_labels,omitempty"`
	EdgeLabels   []string `yaml:"edge_labels,omitempty"`
	Vertices     []Vertex `yaml:"vertices"`
	Edges        []Edge   `yaml:"edges"`
}

type Vertex struct {
	ID         string         `yaml:"id"`
	Label      string         `yaml:"label"`
	Properties map[string]any `yaml:"properties,omitempty"`
}

type Edge struct {
	ID         string         `yaml:"id,omitempty"`
	Label      string         `yaml:"label"`
	Source     string         `yaml:"source"`
	Target     string         `yaml:"target"`
	Properties map[string]any `yaml:"properties,omitempty"`
}

// Load reads a dataset from path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return ds, nil
}

// Decode parses a YAML dataset and checks it for consistency.
func Decode(r io.Reader) (*Dataset, error) {
	var ds Dataset
	if err := yaml.NewDecoder(r).Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Write encodes ds to path, replacing any existing file.
func Write(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	if err := Encode(f, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes ds as YAML.
func Encode(w io.Writer, ds *Dataset) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// Validate reports duplicate vertex ids and edges pointing at unknown vertices.
func (ds *Dataset) Validate() error {
	seen := make(map[string]struct{}, len(ds.Vertices))
	for i, v := range ds.Vertices {
		if v.ID == "" {
			return fmt.Errorf("vertex %d: id is required", i)
		}
		if _, dup := seen[v.ID]; dup {
			return fmt.Errorf("vertex %d: duplicate id %q", i, v.ID)
		}
		seen[v.ID] = struct{}{}
	}
	for i, e := range ds.Edges {
		if e.Label == "" {
			return fmt.Errorf("edge %d: label is required", i)
		}
		if _, ok := seen[e.Source]; !ok {
			return fmt.Errorf("edge %d: unknown source vertex %q", i, e.Source)
		}
		if _, ok := seen[e.Target]; !ok {
			return fmt.Errorf("edge %d: unknown target vertex %q", i, e.Target)
		}
	}
	return nil
}

// DomainVertices converts the dataset vertices.
func (ds *Dataset) DomainVertices() []domain.Vertex {
	out := make([]domain.Vertex, len(ds.Vertices))
	for i, v := range ds.Vertices {
		out[i] = domain.Vertex{ID: v.ID, Label: v.Label, Properties: v.Properties}
	}
	return out
}

// DomainEdges converts the dataset edges. Edge ids left empty stay empty; the
// stores assign them.
func (ds *Dataset) DomainEdges() []domain.Edge {
	out := make([]domain.Edge, len(ds.Edges))
	for i, e := range ds.Edges {
		out[i] = domain.Edge{ID: e.ID, Label: e.Label, Source: e.Source, Target: e.Target, Properties: e.Properties}
	}
	return out
}

// Labels returns the declared edge labels plus any label used by an edge, in
// first-seen order.
func (ds *Dataset) Labels() []string {
	seen := make(map[string]struct{})
	var labels []string
	add := func(l string) {
		if _, ok := seen[l]; ok || l == "" {
			return
		}
		seen[l] = struct{}{}
		labels = append(labels, l)
	}
	for _, l := range ds.EdgeLabels {
		add(l)
	}
	for _, e := range ds.Edges {
		add(e.Label)
	}
	return labels
}
