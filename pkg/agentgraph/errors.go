package agentgraph

import (
	"errors"
	"fmt"
)

// ErrInvalidDocument indicates an import document without "nodes" and
// "edges" arrays. Callers show a localized message for it.
var ErrInvalidDocument = errors.New("invalid workflow document")

// Sentinel errors for structural validation.
var (
	// ErrDuplicateNode indicates two nodes share an ID.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrInvalidNodeID indicates an empty or non-canonical node ID.
	ErrInvalidNodeID = errors.New("invalid node ID")

	// ErrDuplicateEdge indicates two edges share an ID.
	ErrDuplicateEdge = errors.New("duplicate edge ID")

	// ErrDanglingEdge indicates an edge whose source or target does not exist.
	ErrDanglingEdge = errors.New("edge references missing node")

	// ErrPortOutOfRange indicates an edge port index outside the node's ports.
	ErrPortOutOfRange = errors.New("edge port index out of range")
)

// ValidationError locates a structural violation.
type ValidationError struct {
	// NodeID is the offending node, if any.
	NodeID string
	// EdgeID is the offending edge, if any.
	EdgeID string
	// Err is one of the validation sentinels.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch {
	case e.EdgeID != "":
		return fmt.Sprintf("edge %s: %v", e.EdgeID, e.Err)
	case e.NodeID != "":
		return fmt.Sprintf("node %s: %v", e.NodeID, e.Err)
	default:
		return e.Err.Error()
	}
}

// Unwrap returns the sentinel for errors.Is support.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
