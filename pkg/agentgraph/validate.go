package agentgraph

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of a committed workflow:
//  1. node IDs are canonical and unique
//  2. edge IDs are unique
//  3. every edge endpoint references an existing node
//  4. every edge port index is within the referenced node's ports
//
// All violations are reported, joined with errors.Join. Each is a
// *ValidationError wrapping one of the validation sentinels.
// The consistency of Next with edges is not checked; edges are
// authoritative once a workflow is live.
func Validate(w Workflow) error {
	var errs []error

	nodes := make(map[string]Node, len(w.Nodes))
	for _, n := range w.Nodes {
		if !IsCanonical(n.ID) {
			errs = append(errs, &ValidationError{NodeID: fmt.Sprintf("%q", n.ID), Err: ErrInvalidNodeID})
		}
		if _, dup := nodes[n.ID]; dup {
			errs = append(errs, &ValidationError{NodeID: n.ID, Err: ErrDuplicateNode})
			continue
		}
		nodes[n.ID] = n
	}

	seen := make(map[string]bool, len(w.Edges))
	for _, e := range w.Edges {
		if seen[e.ID] {
			errs = append(errs, &ValidationError{EdgeID: e.ID, Err: ErrDuplicateEdge})
		}
		seen[e.ID] = true

		if err := checkEdge(e, nodes); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// checkEdge verifies one edge against the node index.
func checkEdge(e Edge, nodes map[string]Node) error {
	src, srcOK := nodes[e.Source]
	dst, dstOK := nodes[e.Target]
	if !srcOK || !dstOK {
		return &ValidationError{EdgeID: e.ID, Err: fmt.Errorf("%w: %s -> %s", ErrDanglingEdge, e.Source, e.Target)}
	}
	if e.SourcePortIndex < 0 || e.SourcePortIndex >= len(src.Outputs) {
		return &ValidationError{EdgeID: e.ID, Err: fmt.Errorf("%w: output %d of %s", ErrPortOutOfRange, e.SourcePortIndex, e.Source)}
	}
	if e.TargetPortIndex < 0 || e.TargetPortIndex >= len(dst.Inputs) {
		return &ValidationError{EdgeID: e.ID, Err: fmt.Errorf("%w: input %d of %s", ErrPortOutOfRange, e.TargetPortIndex, e.Target)}
	}
	return nil
}
