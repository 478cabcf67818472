package domain

import (
	"fmt"
	"strings"
)

// NoLimit is the sentinel for an unbounded degree, capacity or result limit.
const NoLimit int64 = -1

// Direction selects which incident edges of a vertex are followed.
type Direction string

const (
	DirectionOut  Direction = "OUT"
	DirectionIn   Direction = "IN"
	DirectionBoth Direction = "BOTH"
)

// ParseDirection accepts OUT, IN or BOTH in any case.
func ParseDirection(value string) (Direction, error) {
	switch Direction(strings.ToUpper(strings.TrimSpace(value))) {
	case DirectionOut:
		return DirectionOut, nil
	case DirectionIn:
		return DirectionIn, nil
	case DirectionBoth:
		return DirectionBoth, nil
	default:
		return "", fmt.Errorf("unknown direction %q", value)
	}
}

// Vertex is a stored graph vertex.
type Vertex struct {
	ID         string
	Label      string
	Properties map[string]any
}

// Edge is a stored, labelled, directed edge between two vertices.
type Edge struct {
	ID         string
	Label      string
	Source     string
	Target     string
	Properties map[string]any
}

// OtherVertex returns the endpoint of e that is not vertexID.
func (e Edge) OtherVertex(vertexID string) string {
	if e.Source == vertexID {
		return e.Target
	}
	return e.Source
}

// Step is one hop of a customized path request.
type Step struct {
	Direction     Direction
	Labels        []string
	WeightBy      string
	DefaultWeight float64
	Degree        int64
}

func (s Step) String() string {
	return fmt.Sprintf("step:{direction=%s,labels=%v,weightBy=%s,defaultWeight=%v,degree=%d}",
		s.Direction, s.Labels, s.WeightBy, s.DefaultWeight, s.Degree)
}
