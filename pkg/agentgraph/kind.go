package agentgraph

import "github.com/randalmurphal/agentgraph/pkg/agentgraph/locale"

// NodeKind identifies what a node does in the workflow.
// Kinds outside the known set are extension kinds: they are preserved
// and rendered generically.
type NodeKind string

// Known node kinds.
const (
	KindInput           NodeKind = "UserInput"
	KindReasoning       NodeKind = "AgentReasoning"
	KindCondition       NodeKind = "Condition"
	KindQuestion        NodeKind = "UserQuestion"
	KindResponse        NodeKind = "AgentResponse"
	KindAction          NodeKind = "AgentAction"
	KindScriptExecution NodeKind = "ScriptExecution"
	KindToolCall        NodeKind = "ToolCall"
	KindSkillCall       NodeKind = "SkillCall"
)

// Kinds lists the known kinds in palette order.
var Kinds = []NodeKind{
	KindInput,
	KindReasoning,
	KindCondition,
	KindQuestion,
	KindResponse,
	KindAction,
	KindScriptExecution,
	KindToolCall,
	KindSkillCall,
}

// Known reports whether k is one of the built-in kinds.
func (k NodeKind) Known() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Slug returns the normalized kind used as the prefix of generated node IDs.
// For the built-in kinds this is the lower-cased name ("userinput").
func (k NodeKind) Slug() string {
	return Normalize(string(k))
}

// PortShape is the default set of port labels for a kind.
type PortShape struct {
	Inputs  []string
	Outputs []string
}

// DefaultPorts returns the port labels a freshly created node of kind k
// receives, localized with b. Extension kinds get one generic port on each side.
func DefaultPorts(k NodeKind, b locale.Bundle) PortShape {
	switch k {
	case KindInput:
		return PortShape{Inputs: []string{}, Outputs: []string{b.GenericOutput}}
	case KindReasoning, KindQuestion, KindResponse:
		return PortShape{Inputs: []string{b.GenericInput}, Outputs: []string{b.GenericOutput}}
	case KindAction:
		return PortShape{Inputs: []string{b.GenericInput}, Outputs: []string{}}
	case KindCondition:
		return PortShape{Inputs: []string{b.GenericInput}, Outputs: []string{b.True, b.False}}
	case KindScriptExecution:
		return PortShape{Inputs: []string{b.ScriptInput}, Outputs: []string{b.ScriptOutput}}
	case KindToolCall:
		return PortShape{Inputs: []string{b.ToolInput}, Outputs: []string{b.ToolOutput}}
	case KindSkillCall:
		return PortShape{Inputs: []string{b.SkillInput}, Outputs: []string{b.SkillOutput}}
	default:
		return PortShape{Inputs: []string{b.GenericInput}, Outputs: []string{b.GenericOutput}}
	}
}

// DefaultConfig returns the configuration a new node of kind k starts with,
// or nil for kinds that carry none.
func DefaultConfig(k NodeKind) NodeConfig {
	switch k {
	case KindScriptExecution:
		return ScriptConfig{ScriptType: "python"}
	case KindToolCall:
		return ToolConfig{}
	case KindSkillCall:
		return SkillConfig{}
	default:
		return nil
	}
}

// Accepts reports whether cfg is the configuration variant kind k carries.
// A nil cfg fits every kind. Unknown kinds take only ExtensionConfig, and
// built-in kinds without configuration take nothing else.
func (k NodeKind) Accepts(cfg NodeConfig) bool {
	switch cfg.(type) {
	case nil:
		return true
	case ScriptConfig:
		return k == KindScriptExecution
	case ToolConfig:
		return k == KindToolCall
	case SkillConfig:
		return k == KindSkillCall
	case ExtensionConfig:
		return !k.Known()
	default:
		return false
	}
}
