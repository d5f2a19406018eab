/*
Package agentgraph models agent workflows as graphs of typed nodes
connected port to port.

# Overview

A Workflow is an ordered list of nodes and the edges between them. Each
node has a kind (UserInput, AgentReasoning, Condition, ...), ordered input
and output port labels, and a Next list naming the node reached through
each output port. Edges reference ports by index.

The package covers the lifecycle of such a graph:
  - Repair turns untrusted model output into a structurally valid workflow
  - the mutation methods edit a workflow copy-on-write
  - Validate checks the structural invariants of a committed workflow
  - Import decodes an interchange document, dropping broken edges

Derived views (JSON, Mermaid, Markdown, SOP prompt) live in the view
subpackage; model-backed generation lives in generate.

# Repair

Generated graphs arrive with free-form IDs and only Next lists. Repair
normalizes IDs, resolves references, fills default ports and lays the
nodes out on a grid, then rebuilds every edge from Next:

	resp := agentgraph.RepairResponse(generated,
	    agentgraph.WithRepairLocale(locale.For("zh")),
	)
	fmt.Println(resp.Workflow.Edges[0].ID) // "edge-step_1-step_2_-0"

Repair is idempotent: repairing its own output changes nothing.

# Mutations

Every mutation is a value-receiver method returning a new Workflow:

	w, n := w.AddNode(agentgraph.KindCondition)
	w = w.Connect("start", n.ID, 0, 0)
	w = w.RenameNode(n.ID, "check_input")

Unknown IDs and out-of-range port indices leave the workflow unchanged.
After Repair the edge list is authoritative; SyncNext recomputes Next from
it.

# Errors

Structural violations are reported by Validate as *ValidationError values
joined with errors.Join. Use errors.Is with ErrDuplicateNode,
ErrInvalidNodeID, ErrDuplicateEdge, ErrDanglingEdge or ErrPortOutOfRange.
Import wraps ErrInvalidDocument.
*/
package agentgraph
