package graph

import "errors"

// Sentinel error kinds surfaced by the builder, the scheduler, and the
// output getters. Callers match with errors.Is; the boundary layer maps them
// to stable integer codes.
var (
	ErrNullArg      = errors.New("required argument is missing")
	ErrDuplicateID  = errors.New("duplicate node id")
	ErrUnknownType  = errors.New("unknown node type")
	ErrUnknownNode  = errors.New("unknown node id")
	ErrPortRange    = errors.New("port index out of range")
	ErrTypeMismatch = errors.New("socket type mismatch")
	ErrIndexRange   = errors.New("output index out of range")
	ErrNotComputed  = errors.New("output not computed")

	// ErrCycle's text is part of the boundary contract: callers look for
	// "Cycle" in the last-error message when a run is refused.
	ErrCycle = errors.New("Cycle detected in graph")

	ErrDanglingEdge = errors.New("dangling edge or output index out of bounds")
)
