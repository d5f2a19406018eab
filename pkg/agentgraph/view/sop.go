package view

import (
	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/locale"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/template"
)

// Call-syntax conventions the SOP text must use for executable nodes.
const (
	CallSkillSyntax = "[CALL SKILL] {provider}:{skill}"
	CallToolSyntax  = "[CALL TOOL] {toolName}"
	RunScriptSyntax = "[RUN SCRIPT] {scriptType}"
)

var sopTemplate = template.New("sop-prompt", `# Role
You are a process architect. Turn the agent workflow below into a Standard Operating Procedure (SOP) that an autonomous agent can follow step by step without seeing the graph.

# Workflow
Name: ${name}

`+"```json\n${workflow}\n```"+`

# Stage breakdown
1. Walk the graph from its UserInput nodes along the edges. Each node becomes one numbered step; keep the order of the edges.
2. Group consecutive steps that serve one goal into a stage with a short title.
3. For every step state what it receives (its inputs), what it must do (its description) and what it hands on (its outputs).

# Node handling
- UserInput: state exactly what information to collect from the user before continuing.
- AgentReasoning: describe the analysis to perform and the conclusion it must reach.
- Condition: write an explicit IF / ELSE. The first outgoing branch is taken when the condition holds, the second otherwise. Name the step each branch continues with.
- UserQuestion: give the question to ask, and wait for the answer before continuing.
- AgentResponse: describe the content and tone of the reply to the user.
- AgentAction: describe the action and how to confirm it succeeded.
- SkillCall: write the call on its own line as `+"`"+CallSkillSyntax+"`"+`, using the node's provider and skill fields verbatim.
- ToolCall: write the call on its own line as `+"`"+CallToolSyntax+"`"+`, using the node's toolName field verbatim.
- ScriptExecution: write `+"`"+RunScriptSyntax+"`"+` on its own line followed by the script content in a fenced block.
- Any other node type: describe it from its description, inputs and outputs.

# State and feedback loops
- Edges marked "isLoop": true are feedback loops. Write them as "return to step N" with the condition that triggers the return and a limit on repetitions.
- Keep a short list of the variables each stage produces and refer to them by name in later steps.

# Context hygiene
- Use only what the workflow contains. Do not invent tools, skills or steps.
- Do not repeat the JSON or mention node IDs except inside call lines.
- Keep every step short and imperative.

# Output
Write the SOP in ${language}. Output only the SOP text.
`)

// SOPPrompt builds the instruction prompt that asks a model to write a
// Standard Operating Procedure for w in b's language. The clean JSON of w
// is embedded verbatim.
func SOPPrompt(w agentgraph.Workflow, b locale.Bundle) (string, error) {
	doc, err := JSON(w)
	if err != nil {
		return "", err
	}
	name := w.Name
	if name == "" {
		name = "-"
	}
	return sopTemplate.Execute(map[string]any{
		"name":     name,
		"workflow": doc,
		"language": b.Language,
	})
}
