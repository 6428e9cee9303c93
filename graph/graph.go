package graph

import (
	"errors"
)

const (
	// START is the virtual source node. An edge from START sets the entry point.
	START = "START"
	// END is the virtual sink node. Routing to END finishes the run.
	END = "END"
)

var (
	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when no outgoing edge is found for a node.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrRecursionLimit is returned when a run takes more supersteps than allowed.
	ErrRecursionLimit = errors.New("recursion limit reached without hitting a stop condition")

	// ErrInvalidRoute is returned when a conditional edge picks a target it did not declare.
	ErrInvalidRoute = errors.New("conditional edge returned an undeclared target")
)

// Edge is a static transition between two nodes.
type Edge struct {
	From string
	To   string
}
