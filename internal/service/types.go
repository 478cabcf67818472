package service

import (
	"fmt"
	"strings"

	"github.com/vanshika/hopgraph/internal/domain"
	"github.com/vanshika/hopgraph/internal/traversal"
)

// SortBy selects how customized paths are ranked.
type SortBy string

const (
	SortIncr SortBy = "INCR"
	SortDecr SortBy = "DECR"
	SortNone SortBy = "NONE"
)

// ParseSortBy accepts INCR, DECR or NONE in any case.
func ParseSortBy(value string) (SortBy, error) {
	switch s := SortBy(strings.ToUpper(strings.TrimSpace(value))); s {
	case SortIncr, SortDecr, SortNone:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown sort_by %q", traversal.ErrInvalidArgument, value)
	}
}

// SourceSelector picks the start vertices either by id or by label and property
// equality.
type SourceSelector struct {
	IDs        []string
	Label      string
	Properties map[string]any
}

// CustomizedPathsRequest is the inbound payload accepted by the traversal engine.
// Steps are expected to carry concrete defaults already.
type CustomizedPathsRequest struct {
	Sources    SourceSelector
	Steps      []domain.Step
	SortBy     SortBy
	Capacity   int64
	Limit      int64
	WithVertex bool
}

// CustomizedPathsResult is what the service hands back to transports.
type CustomizedPathsResult struct {
	Paths []traversal.Path
	// Vertices is populated only when the request asked for them.
	Vertices []domain.Vertex
	Ranked   bool
	Accessed int64
	Cutoff   traversal.Cutoff
}
