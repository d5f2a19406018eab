package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/locale"
)

// Op names accepted by the ops endpoint.
const (
	OpAddNode        = "add_node"
	OpRenameNode     = "rename_node"
	OpMoveNode       = "move_node"
	OpSetDescription = "set_description"
	OpSetConfig      = "set_config"
	OpConnect        = "connect"
	OpDeleteNode     = "delete_node"
	OpDeleteEdge     = "delete_edge"
	OpSetEdgeLabel   = "set_edge_label"
	OpMarkLoop       = "mark_loop"
	OpSetPortLabel   = "set_port_label"
	OpAddPort        = "add_port"
	OpRemovePort     = "remove_port"
)

var (
	// ErrUnknownOp is returned for an op name outside the list above.
	ErrUnknownOp = errors.New("unknown op")
	// ErrInvalidOp is returned for an op whose arguments cannot apply.
	ErrInvalidOp = errors.New("invalid op")
	// ErrNoSuchNode is returned when an op names a missing node.
	ErrNoSuchNode = errors.New("no such node")
	// ErrNoSuchEdge is returned when an op names a missing edge.
	ErrNoSuchEdge = errors.New("no such edge")
)

// Op is one editor mutation. Only the fields the op uses are read.
type Op struct {
	Op string `json:"op"`

	Kind        string               `json:"kind,omitempty"`
	NodeID      string               `json:"nodeId,omitempty"`
	NewID       string               `json:"newId,omitempty"`
	Position    *agentgraph.Position `json:"position,omitempty"`
	Description string               `json:"description,omitempty"`

	// Config holds the node's configuration fields under their wire names,
	// for example {"toolName": "web.search"}.
	Config json.RawMessage `json:"config,omitempty"`

	Source     string `json:"source,omitempty"`
	Target     string `json:"target,omitempty"`
	SourcePort int    `json:"sourcePort,omitempty"`
	TargetPort int    `json:"targetPort,omitempty"`

	EdgeID string `json:"edgeId,omitempty"`
	Label  string `json:"label,omitempty"`
	Loop   bool   `json:"loop,omitempty"`

	Direction agentgraph.PortDirection `json:"direction,omitempty"`
	Index     int                      `json:"index,omitempty"`
}

// Apply runs the op against w. The returned node is set by add_node.
func (op Op) Apply(w agentgraph.Workflow, b locale.Bundle) (agentgraph.Workflow, *agentgraph.Node, error) {
	switch op.Op {
	case OpAddNode:
		if op.Kind == "" {
			return w, nil, fmt.Errorf("%w: %s needs kind", ErrInvalidOp, op.Op)
		}
		opts := []agentgraph.NodeOption{agentgraph.WithNodeLocale(b)}
		if op.Position != nil {
			opts = append(opts, agentgraph.WithPosition(*op.Position))
		}
		out, n := w.AddNode(agentgraph.NodeKind(op.Kind), opts...)
		return out, &n, nil

	case OpRenameNode:
		if err := op.needNode(w); err != nil {
			return w, nil, err
		}
		if !agentgraph.IsCanonical(op.NewID) {
			return w, nil, fmt.Errorf("%w: %q is not a canonical node ID", ErrInvalidOp, op.NewID)
		}
		if op.NewID != op.NodeID && w.HasNode(op.NewID) {
			return w, nil, fmt.Errorf("%w: node %q already exists", ErrInvalidOp, op.NewID)
		}
		return w.RenameNode(op.NodeID, op.NewID), nil, nil

	case OpMoveNode:
		if err := op.needNode(w); err != nil {
			return w, nil, err
		}
		if op.Position == nil {
			return w, nil, fmt.Errorf("%w: %s needs position", ErrInvalidOp, op.Op)
		}
		return w.MoveNode(op.NodeID, *op.Position), nil, nil

	case OpSetDescription:
		if err := op.needNode(w); err != nil {
			return w, nil, err
		}
		return w.SetDescription(op.NodeID, op.Description), nil, nil

	case OpSetConfig:
		if err := op.needNode(w); err != nil {
			return w, nil, err
		}
		if len(op.Config) == 0 {
			return w, nil, fmt.Errorf("%w: %s needs config", ErrInvalidOp, op.Op)
		}
		n, _ := w.Node(op.NodeID)
		cfg, err := agentgraph.DecodeConfig(n.Kind, op.Config)
		if err != nil {
			return w, nil, fmt.Errorf("%w: %v", ErrInvalidOp, err)
		}
		return w.SetConfig(op.NodeID, cfg), nil, nil

	case OpConnect:
		for _, id := range []string{op.Source, op.Target} {
			if !w.HasNode(id) {
				return w, nil, fmt.Errorf("%w: %q", ErrNoSuchNode, id)
			}
		}
		src, _ := w.Node(op.Source)
		dst, _ := w.Node(op.Target)
		if op.SourcePort < 0 || op.SourcePort >= len(src.Outputs) ||
			op.TargetPort < 0 || op.TargetPort >= len(dst.Inputs) {
			return w, nil, fmt.Errorf("%w: port out of range", ErrInvalidOp)
		}
		return w.Connect(op.Source, op.Target, op.SourcePort, op.TargetPort), nil, nil

	case OpDeleteNode:
		if err := op.needNode(w); err != nil {
			return w, nil, err
		}
		return w.DeleteNode(op.NodeID), nil, nil

	case OpDeleteEdge:
		if err := op.needEdge(w); err != nil {
			return w, nil, err
		}
		return w.DeleteEdge(op.EdgeID), nil, nil

	case OpSetEdgeLabel:
		if err := op.needEdge(w); err != nil {
			return w, nil, err
		}
		return w.SetEdgeLabel(op.EdgeID, op.Label), nil, nil

	case OpMarkLoop:
		if err := op.needEdge(w); err != nil {
			return w, nil, err
		}
		return w.MarkLoop(op.EdgeID, op.Loop), nil, nil

	case OpSetPortLabel, OpAddPort, OpRemovePort:
		if err := op.needNode(w); err != nil {
			return w, nil, err
		}
		if op.Direction != agentgraph.PortInput && op.Direction != agentgraph.PortOutput {
			return w, nil, fmt.Errorf("%w: direction must be %q or %q", ErrInvalidOp, agentgraph.PortInput, agentgraph.PortOutput)
		}
		switch op.Op {
		case OpAddPort:
			return w.AddPort(op.NodeID, op.Direction, op.Label), nil, nil
		case OpSetPortLabel:
			return w.SetPortLabel(op.NodeID, op.Direction, op.Index, op.Label), nil, nil
		default:
			return w.RemovePort(op.NodeID, op.Direction, op.Index), nil, nil
		}

	default:
		return w, nil, fmt.Errorf("%w: %q", ErrUnknownOp, op.Op)
	}
}

func (op Op) needNode(w agentgraph.Workflow) error {
	if !w.HasNode(op.NodeID) {
		return fmt.Errorf("%w: %q", ErrNoSuchNode, op.NodeID)
	}
	return nil
}

func (op Op) needEdge(w agentgraph.Workflow) error {
	if _, ok := w.Edge(op.EdgeID); !ok {
		return fmt.Errorf("%w: %q", ErrNoSuchEdge, op.EdgeID)
	}
	return nil
}
