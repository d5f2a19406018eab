package agentgraph

import (
	"encoding/json"
	"slices"
)

// Edge connects an output port of Source to an input port of Target.
// IsLoop marks a feedback edge for documentation; it has no other effect.
type Edge struct {
	ID              string `json:"id"`
	Source          string `json:"source"`
	Target          string `json:"target"`
	SourcePortIndex int    `json:"sourcePortIndex"`
	TargetPortIndex int    `json:"targetPortIndex"`
	Label           string `json:"label,omitempty"`
	IsLoop          bool   `json:"isLoop,omitempty"`
}

// Workflow is the aggregate root: an ordered node list and its edges.
//
// Workflow is a value. Every mutation method returns a new Workflow and
// leaves the receiver untouched, so a caller holding the previous value can
// compare or discard it freely. Node order is significant for layout and
// listings.
type Workflow struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Nodes       []Node `json:"nodes"`
	Edges       []Edge `json:"edges"`
}

// MarshalJSON implements json.Marshaler. Nil node and edge lists encode as
// empty arrays, so every encoded Workflow is an importable document.
func (w Workflow) MarshalJSON() ([]byte, error) {
	type plain Workflow
	p := plain(w)
	if p.Nodes == nil {
		p.Nodes = []Node{}
	}
	if p.Edges == nil {
		p.Edges = []Edge{}
	}
	return json.Marshal(p)
}

// PortDirection selects a node's inputs or outputs.
type PortDirection string

// Port directions.
const (
	PortInput  PortDirection = "input"
	PortOutput PortDirection = "output"
)

// Node returns the node with the given ID.
func (w Workflow) Node(id string) (Node, bool) {
	if i := w.nodeIndex(id); i >= 0 {
		return w.Nodes[i], true
	}
	return Node{}, false
}

// HasNode reports whether a node with the given ID exists.
// Callers renaming a node use it to reject collisions first.
func (w Workflow) HasNode(id string) bool {
	return w.nodeIndex(id) >= 0
}

// Edge returns the edge with the given ID.
func (w Workflow) Edge(id string) (Edge, bool) {
	if i := w.edgeIndex(id); i >= 0 {
		return w.Edges[i], true
	}
	return Edge{}, false
}

// EdgesFrom returns the edges whose source is id, in edge-list order.
func (w Workflow) EdgesFrom(id string) []Edge {
	var out []Edge
	for _, e := range w.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns the edges whose target is id, in edge-list order.
func (w Workflow) EdgesTo(id string) []Edge {
	var out []Edge
	for _, e := range w.Edges {
		if e.Target == id {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a deep copy of w.
func (w Workflow) Clone() Workflow {
	c := w
	if w.Nodes != nil {
		c.Nodes = make([]Node, len(w.Nodes))
		for i, n := range w.Nodes {
			c.Nodes[i] = n.clone()
		}
	}
	c.Edges = slices.Clone(w.Edges)
	return c
}

// WithoutPositions returns a copy of w with every node position removed.
// This is the shape of the clean interchange export.
func (w Workflow) WithoutPositions() Workflow {
	c := w.Clone()
	for i := range c.Nodes {
		c.Nodes[i].Position = nil
	}
	return c
}

func (w Workflow) nodeIndex(id string) int {
	return slices.IndexFunc(w.Nodes, func(n Node) bool { return n.ID == id })
}

func (w Workflow) edgeIndex(id string) int {
	return slices.IndexFunc(w.Edges, func(e Edge) bool { return e.ID == id })
}

func (w Workflow) nodeIDs() map[string]bool {
	ids := make(map[string]bool, len(w.Nodes))
	for _, n := range w.Nodes {
		ids[n.ID] = true
	}
	return ids
}
