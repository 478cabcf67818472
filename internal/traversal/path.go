package traversal

// Path is one enumerated path, ordered from its source vertex to its leaf.
// Weights is nil for unranked traversals; otherwise it holds one entry per hop
// and TotalWeight is their sum.
type Path struct {
	Vertices    []string
	Weights     []float64
	TotalWeight float64
}

// frontier maps each reached vertex to the nodes ending there, remembering the
// order in which vertices were first reached so that expansion and
// materialization are reproducible.
type frontier struct {
	order []string
	nodes map[string][]int
}

func newFrontier() *frontier {
	return &frontier{nodes: make(map[string][]int)}
}

func (f *frontier) add(vertexID string, node int) {
	existing, ok := f.nodes[vertexID]
	if !ok {
		f.order = append(f.order, vertexID)
	}
	f.nodes[vertexID] = append(existing, node)
}

func (f *frontier) size() int {
	n := 0
	for _, nodes := range f.nodes {
		n += len(nodes)
	}
	return n
}
