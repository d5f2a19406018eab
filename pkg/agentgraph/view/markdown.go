package view

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/locale"
)

// Markdown renders w as a document: a title block, one subsection per node
// in node order, then the edge list. Headings and the empty-list
// placeholder come from b.
func Markdown(w agentgraph.Workflow, b locale.Bundle) string {
	var sb strings.Builder

	if w.Name != "" {
		fmt.Fprintf(&sb, "# %s\n\n", w.Name)
	}
	if w.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", w.Description)
	}

	fmt.Fprintf(&sb, "## %s\n", b.NodesHeading)
	for _, n := range w.Nodes {
		fmt.Fprintf(&sb, "\n### %s (%s)\n\n", n.ID, n.Kind)
		fmt.Fprintf(&sb, "- **%s**: %s\n", b.Description, orNone(n.Description, b))
		fmt.Fprintf(&sb, "- **%s**: %s\n", b.Inputs, joinPorts(n.Inputs, b))
		fmt.Fprintf(&sb, "- **%s**: %s\n", b.Outputs, joinPorts(n.Outputs, b))
	}

	fmt.Fprintf(&sb, "\n## %s\n\n", b.EdgesHeading)
	for _, e := range w.Edges {
		if e.Label != "" {
			fmt.Fprintf(&sb, "- %s -> %s (%s)\n", e.Source, e.Target, e.Label)
		} else {
			fmt.Fprintf(&sb, "- %s -> %s\n", e.Source, e.Target)
		}
	}
	return sb.String()
}

func joinPorts(ports []string, b locale.Bundle) string {
	if len(ports) == 0 {
		return b.None
	}
	return strings.Join(ports, ", ")
}

func orNone(s string, b locale.Bundle) string {
	if s == "" {
		return b.None
	}
	return s
}
