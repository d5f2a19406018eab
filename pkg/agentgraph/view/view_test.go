package view_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/locale"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/view"
)

func support() agentgraph.Workflow {
	return agentgraph.Repair(agentgraph.Workflow{
		Name:        "Support",
		Description: "Answer product questions.",
		Nodes: []agentgraph.Node{
			{ID: "ask", Kind: agentgraph.KindInput, Description: "Collect the question", Next: []string{"known"}},
			{ID: "known", Kind: agentgraph.KindCondition, Next: []string{"answer", "search"}},
			{ID: "answer", Kind: agentgraph.KindResponse},
			{ID: "search", Kind: agentgraph.KindSkillCall, Config: agentgraph.SkillConfig{Provider: "acme", Skill: "kb"}},
		},
	})
}

func TestJSON(t *testing.T) {
	out, err := view.JSON(support())
	require.NoError(t, err)

	assert.NotContains(t, out, "position")
	assert.True(t, strings.HasPrefix(out, "{\n  \"name\": \"Support\""), out)
	assert.Contains(t, out, `"provider": "acme"`)

	back, err := agentgraph.Import([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, support().WithoutPositions(), back)
}

func TestJSON_EmptyWorkflow(t *testing.T) {
	out, err := view.JSON(agentgraph.Workflow{})
	require.NoError(t, err)
	assert.Contains(t, out, `"nodes": []`)
	assert.Contains(t, out, `"edges": []`)
	assert.True(t, agentgraph.IsWorkflowDocument([]byte(out)))
}

func TestMermaid(t *testing.T) {
	got := view.Mermaid(support())

	want := `graph TD
    classDef input fill:#e3f2fd,stroke:#1565c0,stroke-width:2px
    classDef reasoning fill:#f3e5f5,stroke:#6a1b9a,stroke-width:2px
    classDef condition fill:#fff8e1,stroke:#ff8f00,stroke-width:2px
    classDef action fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px
    ask["ask<br/>UserInput"]
    known["known<br/>Condition"]
    answer["answer<br/>AgentResponse"]
    search["search<br/>SkillCall"]
    class ask input
    class known condition
    ask --> known
    known -->|"True"| answer
    known -->|"False"| search
`
	assert.Equal(t, want, got)
}

func TestMermaid_Sanitizes(t *testing.T) {
	w := agentgraph.Workflow{
		Nodes: []agentgraph.Node{
			{ID: "a", Kind: `Odd"Kind(x)`},
			{ID: "b", Kind: agentgraph.KindAction},
		},
		Edges: []agentgraph.Edge{
			{ID: "e1", Source: "a", Target: "b", Label: `go! "now" 是`},
			{ID: "e2", Source: "b", Target: "a", Label: "!!!"},
		},
	}

	got := view.Mermaid(w)

	assert.Contains(t, got, `    a["a<br/>OddKindx"]`+"\n")
	assert.Contains(t, got, "    class b action\n")
	assert.NotContains(t, got, "class a ")
	assert.Contains(t, got, `    a -->|"go now 是"| b`+"\n")
	assert.Contains(t, got, "    b --> a\n")
}

func TestChartURL(t *testing.T) {
	dsl := view.Mermaid(support())

	url := view.ChartURL(dsl)
	require.True(t, strings.HasPrefix(url, view.DefaultChartBase))
	decoded, err := base64.URLEncoding.DecodeString(strings.TrimPrefix(url, view.DefaultChartBase))
	require.NoError(t, err)
	assert.Equal(t, dsl, string(decoded))

	custom := view.ChartURL("graph TD\n", view.WithChartBase("http://localhost:3000/img/"))
	assert.Equal(t, "http://localhost:3000/img/"+base64.URLEncoding.EncodeToString([]byte("graph TD\n")), custom)

	// Deterministic.
	assert.Equal(t, url, view.ChartURL(dsl))
}

func TestMarkdown(t *testing.T) {
	got := view.Markdown(support(), locale.English)

	want := `# Support

Answer product questions.

## Nodes

### ask (UserInput)

- **Description**: Collect the question
- **Inputs**: None
- **Outputs**: Output

### known (Condition)

- **Description**: None
- **Inputs**: Input
- **Outputs**: True, False

### answer (AgentResponse)

- **Description**: None
- **Inputs**: Input
- **Outputs**: Output

### search (SkillCall)

- **Description**: None
- **Inputs**: Skill Dependency
- **Outputs**: Skill Output

## Edges

- ask -> known
- known -> answer (True)
- known -> search (False)
`
	assert.Equal(t, want, got)
}

func TestMarkdown_Localized(t *testing.T) {
	w := agentgraph.Repair(agentgraph.Workflow{
		Nodes: []agentgraph.Node{{ID: "q", Kind: agentgraph.KindCondition, Next: []string{"q"}}},
	}, agentgraph.WithRepairLocale(locale.Chinese))

	got := view.Markdown(w, locale.Chinese)

	assert.Contains(t, got, "## 节点")
	assert.Contains(t, got, "## 连线")
	assert.Contains(t, got, "- **描述**: 无")
	assert.Contains(t, got, "- q -> q (是)")
}

func TestSOPPrompt(t *testing.T) {
	w := support()
	doc, err := view.JSON(w)
	require.NoError(t, err)

	got, err := view.SOPPrompt(w, locale.Chinese)
	require.NoError(t, err)

	assert.Contains(t, got, doc)
	assert.Contains(t, got, "[CALL SKILL] {provider}:{skill}")
	assert.Contains(t, got, "[CALL TOOL] {toolName}")
	assert.Contains(t, got, "[RUN SCRIPT] {scriptType}")
	assert.Contains(t, got, "Write the SOP in 简体中文.")
	assert.Contains(t, got, "Name: Support")
	assert.NotContains(t, got, "${")
}

func TestRender(t *testing.T) {
	w := support()

	for _, f := range view.Formats {
		t.Run(string(f), func(t *testing.T) {
			got, err := view.Render(f, w, locale.English)
			require.NoError(t, err)
			assert.NotEmpty(t, got)
		})
	}

	md, err := view.Render(view.FormatMarkdown, w, locale.English)
	require.NoError(t, err)
	assert.Equal(t, view.Markdown(w, locale.English), md)

	_, err = view.Render("svg", w, locale.English)
	assert.ErrorIs(t, err, view.ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	f, err := view.ParseFormat("sop-prompt")
	require.NoError(t, err)
	assert.Equal(t, view.FormatSOPPrompt, f)

	_, err = view.ParseFormat("pdf")
	assert.ErrorIs(t, err, view.ErrUnknownFormat)
}
