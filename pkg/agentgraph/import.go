package agentgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/observability"
)

type importConfig struct {
	logger *slog.Logger
}

// ImportOption configures Import.
type ImportOption func(*importConfig)

// WithImportLogger sets the logger for pruned edges. Default: slog.Default().
func WithImportLogger(logger *slog.Logger) ImportOption {
	return func(c *importConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Import decodes an interchange document. The document must be a JSON
// object with "nodes" and "edges" arrays; anything else fails with an error
// wrapping ErrInvalidDocument.
//
// Edges that reference a missing node or an out-of-range port are dropped
// and logged. Node IDs are kept as given; run Repair first when the
// document comes from an untrusted producer.
func Import(data []byte, opts ...ImportOption) (Workflow, error) {
	cfg := importConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := checkDocument(data); err != nil {
		return Workflow{}, err
	}

	var w Workflow
	if err := json.Unmarshal(data, &w); err != nil {
		return Workflow{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	nodes := make(map[string]Node, len(w.Nodes))
	for _, n := range w.Nodes {
		if _, dup := nodes[n.ID]; !dup {
			nodes[n.ID] = n
		}
	}
	kept := make([]Edge, 0, len(w.Edges))
	for _, e := range w.Edges {
		if err := checkEdge(e, nodes); err != nil {
			observability.LogImportPruned(cfg.logger, e.ID, err)
			continue
		}
		kept = append(kept, e)
	}
	w.Edges = kept
	if w.Nodes == nil {
		w.Nodes = []Node{}
	}
	return w, nil
}

// IsWorkflowDocument reports whether data has the shape Import accepts.
func IsWorkflowDocument(data []byte) bool {
	return checkDocument(data) == nil
}

// checkDocument verifies the top-level shape without decoding nodes.
func checkDocument(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	for _, key := range []string{"nodes", "edges"} {
		raw, ok := doc[key]
		if !ok {
			return fmt.Errorf("%w: missing %q", ErrInvalidDocument, key)
		}
		if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
			return fmt.Errorf("%w: %q is not an array", ErrInvalidDocument, key)
		}
	}
	return nil
}
