package service

import (
	"errors"

	"github.com/vanshika/hopgraph/internal/traversal"
)

// ErrNoSources is returned when the source selector matches no vertex.
var ErrNoSources = errors.New("no source vertices")

// IsInvalidRequest reports whether err was caused by the request rather than by
// storage.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, traversal.ErrInvalidArgument) ||
		errors.Is(err, traversal.ErrUnknownLabel) ||
		errors.Is(err, traversal.ErrInvalidWeight) ||
		errors.Is(err, ErrNoSources)
}
