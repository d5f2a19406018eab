package agentgraph

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/locale"
)

// IDSource produces the suffix of generated node IDs and edge IDs.
// The result must already be a canonical slug fragment ([a-z0-9_]).
type IDSource func() string

// UUIDSource is the default IDSource: the first eight hex digits of a
// random UUID.
func UUIDSource() string {
	return uuid.New().String()[:8]
}

type nodeConfig struct {
	bundle   locale.Bundle
	ids      IDSource
	position Position
}

// NodeOption configures AddNode.
type NodeOption func(*nodeConfig)

// WithNodeLocale sets the bundle for default port labels. Default: English.
func WithNodeLocale(b locale.Bundle) NodeOption {
	return func(c *nodeConfig) { c.bundle = b }
}

// WithIDSource overrides the ID suffix generator. Default: UUIDSource.
func WithIDSource(src IDSource) NodeOption {
	return func(c *nodeConfig) {
		if src != nil {
			c.ids = src
		}
	}
}

// WithPosition places the new node at p instead of DefaultCanvasCenter.
func WithPosition(p Position) NodeOption {
	return func(c *nodeConfig) { c.position = p }
}

// maxIDAttempts bounds suffix regeneration before falling back to a counter.
const maxIDAttempts = 8

// AddNode appends a node of the given kind with the kind's default ports
// and configuration. Its ID is "{kind slug}_{suffix}", regenerated until
// unique within w. The new node is returned so the caller can select it.
func (w Workflow) AddNode(kind NodeKind, opts ...NodeOption) (Workflow, Node) {
	cfg := nodeConfig{
		bundle:   locale.English,
		ids:      UUIDSource,
		position: DefaultCanvasCenter,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	taken := w.nodeIDs()
	prefix := kind.Slug()
	if prefix == "" {
		prefix = "node"
	}
	id := ""
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		candidate := Normalize(prefix + "_" + cfg.ids())
		if !taken[candidate] {
			id = candidate
			break
		}
	}
	if id == "" {
		id = disambiguate(prefix, taken)
	}

	shape := DefaultPorts(kind, cfg.bundle)
	pos := cfg.position
	n := Node{
		ID:       id,
		Kind:     kind,
		Inputs:   shape.Inputs,
		Outputs:  shape.Outputs,
		Next:     []string{},
		Position: &pos,
		Config:   DefaultConfig(kind),
	}

	out := w.Clone()
	out.Nodes = append(out.Nodes, n)
	return out, n.clone()
}

// RenameNode changes a node's ID and rewrites every edge endpoint and Next
// entry that referenced the old ID.
//
// RenameNode does not check newID for collisions or normalization; callers
// must reject a newID for which HasNode is true. Renaming onto an existing
// ID merges the two nodes' edges.
func (w Workflow) RenameNode(oldID, newID string) Workflow {
	out := w.Clone()
	i := out.nodeIndex(oldID)
	if i < 0 || oldID == newID {
		return out
	}

	out.Nodes[i].ID = newID
	for j := range out.Nodes {
		for k, ref := range out.Nodes[j].Next {
			if ref == oldID {
				out.Nodes[j].Next[k] = newID
			}
		}
	}
	for j := range out.Edges {
		if out.Edges[j].Source == oldID {
			out.Edges[j].Source = newID
		}
		if out.Edges[j].Target == oldID {
			out.Edges[j].Target = newID
		}
	}
	return out
}

// MoveNode sets a node's canvas position.
func (w Workflow) MoveNode(id string, p Position) Workflow {
	return w.updateNode(id, func(n *Node) { n.Position = &p })
}

// SetDescription replaces a node's description, capped at
// MaxDescriptionLength runes.
func (w Workflow) SetDescription(id, text string) Workflow {
	return w.updateNode(id, func(n *Node) {
		n.Description = truncateRunes(text, MaxDescriptionLength)
	})
}

// SetConfig replaces a node's kind-specific configuration. It is a no-op
// when the node's kind does not accept cfg (see NodeKind.Accepts), since
// export writes only the variant matching the kind.
func (w Workflow) SetConfig(id string, cfg NodeConfig) Workflow {
	return w.updateNode(id, func(n *Node) {
		if n.Kind.Accepts(cfg) {
			n.Config = cfg
		}
	})
}

// Connect adds an edge from output sourcePort of source to input
// targetPort of target, and adds target to source's Next if absent.
//
// Connect is a no-op when an edge with the same four endpoints exists,
// when either node is missing, or when a port index is out of range.
func (w Workflow) Connect(source, target string, sourcePort, targetPort int) Workflow {
	out := w.Clone()
	si, ti := out.nodeIndex(source), out.nodeIndex(target)
	if si < 0 || ti < 0 {
		return out
	}
	if sourcePort < 0 || sourcePort >= len(out.Nodes[si].Outputs) ||
		targetPort < 0 || targetPort >= len(out.Nodes[ti].Inputs) {
		return out
	}
	for _, e := range out.Edges {
		if e.Source == source && e.Target == target &&
			e.SourcePortIndex == sourcePort && e.TargetPortIndex == targetPort {
			return out
		}
	}

	id := "edge-" + UUIDSource()
	for out.edgeIndex(id) >= 0 {
		id = "edge-" + UUIDSource()
	}
	out.Edges = append(out.Edges, Edge{
		ID:              id,
		Source:          source,
		Target:          target,
		SourcePortIndex: sourcePort,
		TargetPortIndex: targetPort,
	})
	if !slices.Contains(out.Nodes[si].Next, target) {
		out.Nodes[si].Next = append(out.Nodes[si].Next, target)
	}
	return out
}

// DeleteNode removes a node and every edge touching it. Other nodes' Next
// lists are left as they are; Repair drops such stale entries.
func (w Workflow) DeleteNode(id string) Workflow {
	out := w.Clone()
	i := out.nodeIndex(id)
	if i < 0 {
		return out
	}
	out.Nodes = slices.Delete(out.Nodes, i, i+1)
	out.Edges = slices.DeleteFunc(out.Edges, func(e Edge) bool {
		return e.Source == id || e.Target == id
	})
	return out
}

// DeleteEdge removes one edge. Next is left as it is.
func (w Workflow) DeleteEdge(id string) Workflow {
	out := w.Clone()
	out.Edges = slices.DeleteFunc(out.Edges, func(e Edge) bool { return e.ID == id })
	return out
}

// SetEdgeLabel replaces an edge's display label.
func (w Workflow) SetEdgeLabel(id, label string) Workflow {
	return w.updateEdge(id, func(e *Edge) { e.Label = label })
}

// MarkLoop sets or clears an edge's feedback-loop marker.
func (w Workflow) MarkLoop(id string, loop bool) Workflow {
	return w.updateEdge(id, func(e *Edge) { e.IsLoop = loop })
}

// SetPortLabel renames the port at index.
func (w Workflow) SetPortLabel(id string, dir PortDirection, index int, label string) Workflow {
	return w.updateNode(id, func(n *Node) {
		ports := n.ports(dir)
		if index >= 0 && index < len(ports) {
			ports[index] = label
		}
	})
}

// AddPort appends a port.
func (w Workflow) AddPort(id string, dir PortDirection, label string) Workflow {
	return w.updateNode(id, func(n *Node) {
		if dir == PortInput {
			n.Inputs = append(n.Inputs, label)
		} else {
			n.Outputs = append(n.Outputs, label)
		}
	})
}

// RemovePort deletes the port at index. Edges attached to that port are
// removed and edges on higher-indexed ports of the same node shift down by
// one, so every remaining edge stays in range.
func (w Workflow) RemovePort(id string, dir PortDirection, index int) Workflow {
	out := w.Clone()
	i := out.nodeIndex(id)
	if i < 0 {
		return out
	}
	n := &out.Nodes[i]
	if index < 0 || index >= len(n.ports(dir)) {
		return out
	}
	if dir == PortInput {
		n.Inputs = slices.Delete(n.Inputs, index, index+1)
	} else {
		n.Outputs = slices.Delete(n.Outputs, index, index+1)
	}

	kept := out.Edges[:0]
	for _, e := range out.Edges {
		port, onNode := &e.SourcePortIndex, e.Source == id
		if dir == PortInput {
			port, onNode = &e.TargetPortIndex, e.Target == id
		}
		if onNode {
			if *port == index {
				continue
			}
			if *port > index {
				*port--
			}
		}
		kept = append(kept, e)
	}
	out.Edges = kept
	return out
}

// SyncNext recomputes every node's Next from the edge list: one entry per
// outgoing edge, ordered by source port index and then edge order.
func (w Workflow) SyncNext() Workflow {
	out := w.Clone()
	for i := range out.Nodes {
		edges := out.EdgesFrom(out.Nodes[i].ID)
		slices.SortStableFunc(edges, func(a, b Edge) int {
			return cmp.Compare(a.SourcePortIndex, b.SourcePortIndex)
		})
		next := make([]string, len(edges))
		for k, e := range edges {
			next[k] = e.Target
		}
		out.Nodes[i].Next = next
	}
	return out
}

func (w Workflow) updateNode(id string, fn func(*Node)) Workflow {
	out := w.Clone()
	if i := out.nodeIndex(id); i >= 0 {
		fn(&out.Nodes[i])
	}
	return out
}

func (w Workflow) updateEdge(id string, fn func(*Edge)) Workflow {
	out := w.Clone()
	if i := out.edgeIndex(id); i >= 0 {
		fn(&out.Edges[i])
	}
	return out
}

// String implements fmt.Stringer for debugging output.
func (w Workflow) String() string {
	return fmt.Sprintf("Workflow(%q, %d nodes, %d edges)", w.Name, len(w.Nodes), len(w.Edges))
}
