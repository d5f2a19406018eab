package agentgraph

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/locale"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/observability"
)

// Grid layout constants used by Repair.
const (
	GridColumns = 3
	GridOriginX = 100
	GridOriginY = 100
	GridStepX   = 450
	GridStepY   = 350
)

// GenerationResponse is the shape returned by a workflow generation
// collaborator. It is untrusted until passed through RepairResponse.
type GenerationResponse struct {
	Confirmation string    `json:"confirmation"`
	Workflow     *Workflow `json:"workflow"`
}

type repairConfig struct {
	bundle  locale.Bundle
	logger  *slog.Logger
	metrics observability.MetricsRecorder
}

// RepairOption configures Repair.
type RepairOption func(*repairConfig)

// WithRepairLocale sets the bundle used for condition labels and default ports.
// Default: locale.English.
func WithRepairLocale(b locale.Bundle) RepairOption {
	return func(c *repairConfig) { c.bundle = b }
}

// WithRepairLogger sets the logger. Default: slog.Default().
func WithRepairLogger(logger *slog.Logger) RepairOption {
	return func(c *repairConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRepairMetrics sets the metrics recorder. Default: no-op.
func WithRepairMetrics(m observability.MetricsRecorder) RepairOption {
	return func(c *repairConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// Repair turns an untrusted graph (model output or an import) into a
// structurally valid workflow.
//
// Steps, in order:
//  1. Normalize every node ID. A slug already taken, or an empty slug, is
//     disambiguated with a counter suffix ("step_1_2"); the collision is
//     logged.
//  2. Resolve every Next entry against the remapped nodes and drop entries
//     that resolve to nothing. Resolution tries the raw ID, then the slug,
//     then the slug without surrounding underscores (unique match only).
//  3. Fill missing ports with the kind's defaults, pad outputs to cover
//     every Next entry, give targeted nodes at least one input, fill a
//     missing kind configuration, and cap descriptions.
//  4. Lay nodes out on a three-column grid in node order.
//  5. Rebuild edges from Next: Next[k] becomes edge-{src}-{dst}-{k} from
//     output k to input 0, labelled True/False for condition nodes.
//
// A workflow with a nil node list is returned unchanged. Repair never
// modifies w and is idempotent.
func Repair(w Workflow, opts ...RepairOption) Workflow {
	if w.Nodes == nil {
		return w
	}

	cfg := repairConfig{
		bundle:  locale.English,
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	out := w.Clone()
	resolve := remapIDs(out.Nodes, cfg.logger)

	pruned := 0
	targeted := make(map[string]bool)
	for i := range out.Nodes {
		n := &out.Nodes[i]
		next := make([]string, 0, len(n.Next))
		for _, ref := range n.Next {
			id, ok := resolve(ref)
			if !ok {
				pruned++
				observability.LogPrunedReference(cfg.logger, n.ID, ref)
				continue
			}
			next = append(next, id)
			targeted[id] = true
		}
		n.Next = next
	}

	for i := range out.Nodes {
		fillShape(&out.Nodes[i], targeted[out.Nodes[i].ID], cfg.bundle)
		out.Nodes[i].Position = gridPosition(i)
	}

	out.Edges = edgesFromNext(out.Nodes, cfg.bundle)

	cfg.metrics.RecordRepair(context.Background(), len(out.Nodes), pruned)
	observability.LogRepair(cfg.logger, out.Name, len(out.Nodes), len(out.Edges), pruned)
	return out
}

// RepairResponse repairs the workflow carried by a generation response.
// A response without a workflow is returned unchanged.
func RepairResponse(r GenerationResponse, opts ...RepairOption) GenerationResponse {
	if r.Workflow == nil {
		return r
	}
	repaired := Repair(*r.Workflow, opts...)
	r.Workflow = &repaired
	return r
}

// remapIDs assigns canonical unique IDs in place and returns the resolver
// used for Next entries.
func remapIDs(nodes []Node, logger *slog.Logger) func(ref string) (string, bool) {
	byRaw := make(map[string]string, len(nodes))
	taken := make(map[string]bool, len(nodes))

	for i := range nodes {
		raw := nodes[i].ID
		canon := Normalize(raw)
		assigned := canon
		if assigned == "" {
			assigned = "node"
		}
		if taken[assigned] {
			assigned = disambiguate(assigned, taken)
			observability.LogIDCollision(logger, raw, canon, assigned)
		}
		taken[assigned] = true
		if _, seen := byRaw[raw]; !seen {
			byRaw[raw] = assigned
		}
		nodes[i].ID = assigned
	}

	byLoose := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		key := looseKey(n.ID)
		byLoose[key] = append(byLoose[key], n.ID)
	}

	return func(ref string) (string, bool) {
		if id, ok := byRaw[ref]; ok {
			return id, true
		}
		if canon := Normalize(ref); taken[canon] {
			return canon, true
		}
		key := looseKey(ref)
		if key == "" {
			return "", false
		}
		if ids := byLoose[key]; len(ids) == 1 {
			return ids[0], true
		}
		return "", false
	}
}

// disambiguate returns the first free "{base}_{n}" slug, n >= 2.
func disambiguate(base string, taken map[string]bool) string {
	for n := 2; ; n++ {
		candidate := Normalize(base + "_" + strconv.Itoa(n))
		if !taken[candidate] {
			return candidate
		}
	}
}

// fillShape completes a node's ports, configuration and description.
func fillShape(n *Node, targeted bool, b locale.Bundle) {
	shape := DefaultPorts(n.Kind, b)
	if n.Inputs == nil {
		n.Inputs = shape.Inputs
	}
	if n.Outputs == nil {
		n.Outputs = shape.Outputs
	}
	for len(n.Outputs) < len(n.Next) {
		n.Outputs = append(n.Outputs, b.GenericOutput)
	}
	if targeted && len(n.Inputs) == 0 {
		n.Inputs = append(n.Inputs, b.GenericInput)
	}
	if n.Config == nil || !n.Kind.Accepts(n.Config) {
		n.Config = DefaultConfig(n.Kind)
	}
	n.Description = truncateRunes(n.Description, MaxDescriptionLength)
}

// gridPosition returns the layout slot for node index i.
func gridPosition(i int) *Position {
	return &Position{
		X: float64(GridOriginX + (i%GridColumns)*GridStepX),
		Y: float64(GridOriginY + (i/GridColumns)*GridStepY),
	}
}

// edgesFromNext derives the full edge list from every node's Next.
func edgesFromNext(nodes []Node, b locale.Bundle) []Edge {
	edges := []Edge{}
	for _, n := range nodes {
		for k, target := range n.Next {
			e := Edge{
				ID:              fmt.Sprintf("edge-%s-%s-%d", n.ID, target, k),
				Source:          n.ID,
				Target:          target,
				SourcePortIndex: k,
				TargetPortIndex: 0,
			}
			if n.Kind == KindCondition {
				e.Label = b.False
				if k == 0 {
					e.Label = b.True
				}
			}
			edges = append(edges, e)
		}
	}
	return edges
}
