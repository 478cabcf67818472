package traversal

import "errors"

var (
	// ErrInvalidArgument marks a request that is rejected before any expansion work.
	ErrInvalidArgument = errors.New("invalid traversal argument")

	// ErrUnknownLabel is returned by a LabelResolver for an edge label that does not exist.
	ErrUnknownLabel = errors.New("unknown edge label")

	// ErrInvalidWeight is returned when a step's weight property holds a non-numeric value.
	ErrInvalidWeight = errors.New("edge weight property is not numeric")
)
