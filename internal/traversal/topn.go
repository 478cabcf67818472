package traversal

import (
	"math"
	"slices"
)

// TopN keeps the limit best paths by TotalWeight. When no truncation is needed
// paths is returned unchanged and unsorted. Otherwise paths are stably sorted,
// so equal weights keep their input order, and everything past limit is
// dropped. NaN weights compare greater than any number.
func TopN(paths []Path, ascending bool, limit int64) []Path {
	if limit < 0 || int64(len(paths)) <= limit {
		return paths
	}

	sorted := slices.Clone(paths)
	slices.SortStableFunc(sorted, func(a, b Path) int {
		c := compareWeights(a.TotalWeight, b.TotalWeight)
		if ascending {
			return c
		}
		return -c
	})
	return sorted[:limit:limit]
}

func compareWeights(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
