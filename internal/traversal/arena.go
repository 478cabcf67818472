package traversal

import "gonum.org/v1/gonum/floats"

const noParent = -1

// nodeArena stores the shared ancestry tree of all in-flight paths of one
// request. A node is an index; its parent index is always smaller than its own,
// so the tree is acyclic by construction and nodes are never mutated.
type nodeArena struct {
	ranked  bool
	ids     []string
	parents []int
	weights []float64
}

func newNodeArena(ranked bool, sizeHint int) *nodeArena {
	a := &nodeArena{
		ranked:  ranked,
		ids:     make([]string, 0, sizeHint),
		parents: make([]int, 0, sizeHint),
	}
	if ranked {
		a.weights = make([]float64, 0, sizeHint)
	}
	return a
}

// add appends a node reached through an edge of the given weight. Roots use
// noParent and weight 0.
func (a *nodeArena) add(id string, parent int, weight float64) int {
	idx := len(a.ids)
	a.ids = append(a.ids, id)
	a.parents = append(a.parents, parent)
	if a.ranked {
		a.weights = append(a.weights, weight)
	}
	return idx
}

// contains reports whether id occurs on the chain from node up to its root.
func (a *nodeArena) contains(node int, id string) bool {
	for cur := node; cur != noParent; cur = a.parents[cur] {
		if a.ids[cur] == id {
			return true
		}
	}
	return false
}

func (a *nodeArena) depth(node int) int {
	n := 0
	for cur := node; cur != noParent; cur = a.parents[cur] {
		n++
	}
	return n
}

// vertices returns the ids from the root down to node.
func (a *nodeArena) vertices(node int) []string {
	out := make([]string, a.depth(node))
	i := len(out) - 1
	for cur := node; cur != noParent; cur = a.parents[cur] {
		out[i] = a.ids[cur]
		i--
	}
	return out
}

// edgeWeights returns the incoming edge weights from the first hop down to node.
// The root carries no incoming edge and contributes nothing.
func (a *nodeArena) edgeWeights(node int) []float64 {
	out := make([]float64, a.depth(node)-1)
	i := len(out) - 1
	for cur := node; a.parents[cur] != noParent; cur = a.parents[cur] {
		out[i] = a.weights[cur]
		i--
	}
	return out
}

// path materializes node into a root-to-leaf Path.
func (a *nodeArena) path(node int) Path {
	p := Path{Vertices: a.vertices(node)}
	if a.ranked {
		p.Weights = a.edgeWeights(node)
		p.TotalWeight = floats.Sum(p.Weights)
	}
	return p
}
