package generate

import (
	"strings"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/locale"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/template"
)

var workflowTemplate = template.New("workflow", `You design agent workflows as directed graphs.

Turn the request below into a workflow. Answer with one JSON object and nothing else:

{
  "confirmation": "one or two sentences telling the user what you built, or the question you need answered",
  "workflow": {
    "name": "short name",
    "description": "what the workflow achieves",
    "nodes": [
      {
        "node_id": "snake_case_id",
        "node_type": "one of the node types below",
        "description": "what this step does, at most ${max_description} characters",
        "next": ["node_id of each following step"]
      }
    ]
  }
}

Node types:
${kinds}

Rules:
- Start with exactly one UserInput node.
- "next" lists the steps that follow, in output-port order. A Condition node has exactly two entries: the step taken when the condition holds, then the step taken otherwise.
- Every node_id in "next" must be the node_id of a node in the list.
- ScriptExecution nodes also carry "scriptType" and "scriptContent".
- ToolCall nodes also carry "toolName".
- SkillCall nodes also carry "provider" and "skill".
- Omit "edges", "inputs", "outputs" and "position"; they are derived.
- If the request is too vague to build anything, set "workflow" to null and ask your question in "confirmation".

Write "confirmation", "name", "description" and every node description in ${language}.

Request:
${request}
`)

// kindGuide describes each built-in node kind for the model.
var kindGuide = map[agentgraph.NodeKind]string{
	agentgraph.KindInput:           "collects the user's request or data",
	agentgraph.KindReasoning:       "the agent thinks, plans or analyzes",
	agentgraph.KindCondition:       "branches on a yes/no decision",
	agentgraph.KindQuestion:        "asks the user a follow-up question",
	agentgraph.KindResponse:        "replies to the user",
	agentgraph.KindAction:          "performs a final side effect; has no outputs",
	agentgraph.KindScriptExecution: "runs a script",
	agentgraph.KindToolCall:        "calls an external tool",
	agentgraph.KindSkillCall:       "invokes a skill from a provider",
}

// workflowPrompt builds the generation prompt for request in b's language.
func workflowPrompt(request string, b locale.Bundle) (string, error) {
	var kinds strings.Builder
	for _, k := range agentgraph.Kinds {
		kinds.WriteString("- ")
		kinds.WriteString(string(k))
		kinds.WriteString(": ")
		kinds.WriteString(kindGuide[k])
		kinds.WriteByte('\n')
	}
	return workflowTemplate.Execute(map[string]any{
		"kinds":           strings.TrimRight(kinds.String(), "\n"),
		"language":        b.Language,
		"max_description": agentgraph.MaxDescriptionLength,
		"request":         request,
	})
}
