package view

import (
	"encoding/base64"
	"strings"
	"unicode"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
)

// DefaultChartBase is the rendering service ChartURL points at.
const DefaultChartBase = "https://mermaid.ink/img/"

// classDefs are the four node styles, in declaration order.
var classDefs = []string{
	"classDef input fill:#e3f2fd,stroke:#1565c0,stroke-width:2px",
	"classDef reasoning fill:#f3e5f5,stroke:#6a1b9a,stroke-width:2px",
	"classDef condition fill:#fff8e1,stroke:#ff8f00,stroke-width:2px",
	"classDef action fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px",
}

// styleClass maps a kind to its diagram class. Kinds not listed get none.
var styleClass = map[agentgraph.NodeKind]string{
	agentgraph.KindInput:     "input",
	agentgraph.KindReasoning: "reasoning",
	agentgraph.KindCondition: "condition",
	agentgraph.KindAction:    "action",
}

// Mermaid renders w as a top-down Mermaid flowchart: node declarations,
// class assignments, then one arrow per edge.
func Mermaid(w agentgraph.Workflow) string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	for _, def := range classDefs {
		b.WriteString("    ")
		b.WriteString(def)
		b.WriteByte('\n')
	}

	for _, n := range w.Nodes {
		id := stripBrackets(n.ID)
		b.WriteString("    ")
		b.WriteString(id)
		b.WriteString(`["`)
		b.WriteString(id)
		b.WriteString("<br/>")
		b.WriteString(stripBrackets(string(n.Kind)))
		b.WriteString("\"]\n")
	}

	for _, n := range w.Nodes {
		if cls, ok := styleClass[n.Kind]; ok {
			b.WriteString("    class ")
			b.WriteString(stripBrackets(n.ID))
			b.WriteByte(' ')
			b.WriteString(cls)
			b.WriteByte('\n')
		}
	}

	for _, e := range w.Edges {
		b.WriteString("    ")
		b.WriteString(stripBrackets(e.Source))
		if label := edgeLabel(e.Label); label != "" {
			b.WriteString(` -->|"`)
			b.WriteString(label)
			b.WriteString(`"| `)
		} else {
			b.WriteString(" --> ")
		}
		b.WriteString(stripBrackets(e.Target))
		b.WriteByte('\n')
	}
	return b.String()
}

type chartConfig struct {
	base string
}

// ChartOption configures ChartURL.
type ChartOption func(*chartConfig)

// WithChartBase points ChartURL at another rendering service.
// Default: DefaultChartBase.
func WithChartBase(base string) ChartOption {
	return func(c *chartConfig) {
		if base != "" {
			c.base = base
		}
	}
}

// ChartURL returns an image URL for the diagram source: the base followed
// by the URL-safe base64 encoding of dsl.
func ChartURL(dsl string, opts ...ChartOption) string {
	cfg := chartConfig{base: DefaultChartBase}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg.base + base64.URLEncoding.EncodeToString([]byte(dsl))
}

// stripBrackets removes the characters that would end a Mermaid node label.
func stripBrackets(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '"', '(', ')':
			return -1
		}
		return r
	}, s)
}

// edgeLabel keeps ASCII letters and digits, CJK ideographs and whitespace.
// A label with nothing else left is dropped.
func edgeLabel(s string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return r
		case unicode.Is(unicode.Han, r), unicode.IsSpace(r):
			return r
		}
		return -1
	}, s)
	if strings.TrimSpace(clean) == "" {
		return ""
	}
	return clean
}
