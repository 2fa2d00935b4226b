package engine

import "errors"

var (
	// ErrInvalidTopology covers malformed requests: a node count below 2,
	// or a node or link that does not exist in the current topology.
	ErrInvalidTopology = errors.New("invalid topology request")

	// ErrUnreachable marks a discovery attempt that ended FAILED because
	// no path to the destination exists. Reported, never retried here.
	ErrUnreachable = errors.New("destination unreachable")
)
