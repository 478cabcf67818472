package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/vanshika/hopgraph/internal/dataset"
)

// Vertex and edge labels of the generated graph.
const (
	LabelPerson   = "person"
	LabelSoftware = "software"
	LabelKnows    = "knows"
	LabelCreated  = "created"
)

// Generator produces a synthetic person/software graph with weighted edges.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	nameFragments nameFragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumPersons <= 0 {
		cfg.NumPersons = def.NumPersons
	}
	if cfg.NumSoftware < 0 {
		cfg.NumSoftware = 0
	}
	if cfg.KnowsPerPerson < 0 {
		cfg.KnowsPerPerson = 0
	}
	if cfg.CreatedPerPerson < 0 {
		cfg.CreatedPerPerson = 0
	}
	if cfg.MaxWeight <= cfg.MinWeight {
		cfg.MinWeight, cfg.MaxWeight = def.MinWeight, def.MaxWeight
	}
	cfg.UnweightedChance = clamp(cfg.UnweightedChance, 0, 1)
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		nameFragments: defaultNameFragments(),
	}
}

// Generate synthesises vertices and edges. It respects context cancellation.
// Knows edges never loop and never repeat an ordered pair.
func (g *Generator) Generate(ctx context.Context) (*dataset.Dataset, error) {
	ds := &dataset.Dataset{
		VertexLabels: []string{LabelPerson, LabelSoftware},
		EdgeLabels:   []string{LabelKnows, LabelCreated},
		Vertices:     make([]dataset.Vertex, 0, g.cfg.NumPersons+g.cfg.NumSoftware),
	}

	persons := make([]string, g.cfg.NumPersons)
	for i := range persons {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		persons[i] = fmt.Sprintf("P-%06d", i+1)
		ds.Vertices = append(ds.Vertices, dataset.Vertex{
			ID:    persons[i],
			Label: LabelPerson,
			Properties: map[string]any{
				"name": g.randomName(),
				"age":  18 + g.rand.Intn(60),
				"city": g.pick(g.nameFragments.cities),
			},
		})
	}

	software := make([]string, g.cfg.NumSoftware)
	for i := range software {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		software[i] = fmt.Sprintf("S-%05d", i+1)
		ds.Vertices = append(ds.Vertices, dataset.Vertex{
			ID:    software[i],
			Label: LabelSoftware,
			Properties: map[string]any{
				"name":  fmt.Sprintf("%s-%d", g.pick(g.nameFragments.projects), i+1),
				"lang":  g.pick(g.nameFragments.languages),
				"price": 10 * (1 + g.rand.Intn(100)),
			},
		})
	}

	knows := min(g.cfg.KnowsPerPerson, len(persons)-1)
	for _, src := range persons {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seen := map[string]struct{}{src: {}}
		for len(seen) <= knows {
			dst := persons[g.rand.Intn(len(persons))]
			if _, dup := seen[dst]; dup {
				continue
			}
			seen[dst] = struct{}{}
			ds.Edges = append(ds.Edges, g.edge(LabelKnows, src, dst))
		}
		if len(software) == 0 {
			continue
		}
		for i := 0; i < g.cfg.CreatedPerPerson; i++ {
			dst := software[g.rand.Intn(len(software))]
			ds.Edges = append(ds.Edges, g.edge(LabelCreated, src, dst))
		}
	}

	for i := range ds.Edges {
		ds.Edges[i].ID = fmt.Sprintf("E-%07d", i+1)
	}
	return ds, nil
}

func (g *Generator) edge(label, src, dst string) dataset.Edge {
	e := dataset.Edge{
		Label:  label,
		Source: src,
		Target: dst,
		Properties: map[string]any{
			"date": fmt.Sprintf("20%02d-%02d-%02d", 10+g.rand.Intn(15), 1+g.rand.Intn(12), 1+g.rand.Intn(28)),
		},
	}
	if g.rand.Float64() >= g.cfg.UnweightedChance {
		e.Properties["weight"] = g.randomWeight()
	}
	return e
}

// randomWeight is uniform in [MinWeight, MaxWeight), rounded to two decimals.
func (g *Generator) randomWeight() float64 {
	w := g.cfg.MinWeight + g.rand.Float64()*(g.cfg.MaxWeight-g.cfg.MinWeight)
	return math.Round(w*100) / 100
}

func (g *Generator) randomName() string {
	return fmt.Sprintf("%s %s", g.pick(g.nameFragments.first), g.pick(g.nameFragments.last))
}

func (g *Generator) pick(options []string) string {
	return options[g.rand.Intn(len(options))]
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

type nameFragments struct {
	first     []string
	last      []string
	cities    []string
	projects  []string
	languages []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:     []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara"},
		last:      []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee"},
		cities:    []string{"Beijing", "Shanghai", "Hongkong", "Seattle", "Austin", "Berlin", "Lagos", "Lima", "Pune"},
		projects:  []string{"lop", "ripple", "hubble", "loader", "studio", "computer", "toolchain"},
		languages: []string{"java", "go", "python", "rust", "c++"},
	}
}
