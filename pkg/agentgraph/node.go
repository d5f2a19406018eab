package agentgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/config"
)

// MaxDescriptionLength is the longest node description, in runes.
const MaxDescriptionLength = 350

// Position is a node's canvas coordinate. It is presentational only.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DefaultCanvasCenter is where AddNode places new nodes.
var DefaultCanvasCenter = Position{X: 400, Y: 300}

// Node is a unit of work in a workflow.
//
// Inputs and Outputs are ordered; edges reference ports by index.
// Next is the adjacency projection: Next[k] is the node reached through
// output port k.
type Node struct {
	ID          string
	Kind        NodeKind
	Description string
	Inputs      []string
	Outputs     []string
	Position    *Position
	Next        []string
	Config      NodeConfig
}

// NodeConfig is the kind-specific payload of a node. It is one of
// ScriptConfig, ToolConfig, SkillConfig or ExtensionConfig.
type NodeConfig interface {
	isNodeConfig()
}

// ScriptConfig configures a ScriptExecution node.
type ScriptConfig struct {
	ScriptType    string
	ScriptContent string
}

// ToolConfig configures a ToolCall node.
type ToolConfig struct {
	ToolName string
}

// SkillConfig configures a SkillCall node.
type SkillConfig struct {
	Provider string
	Skill    string
}

// ExtensionConfig carries the extra keys of a node whose kind is not
// built in. Keys are written back verbatim on export.
type ExtensionConfig struct {
	config.Config
}

func (ScriptConfig) isNodeConfig()    {}
func (ToolConfig) isNodeConfig()      {}
func (SkillConfig) isNodeConfig()     {}
func (ExtensionConfig) isNodeConfig() {}

// nodeJSON is the wire shape of a Node. Config fields are flattened into
// the node object.
type nodeJSON struct {
	ID          string    `json:"node_id"`
	Kind        NodeKind  `json:"node_type"`
	Description string    `json:"description"`
	Inputs      []string  `json:"inputs"`
	Outputs     []string  `json:"outputs"`
	Next        []string  `json:"next"`
	Position    *Position `json:"position,omitempty"`

	ScriptType    *string `json:"scriptType,omitempty"`
	ScriptContent *string `json:"scriptContent,omitempty"`
	ToolName      *string `json:"toolName,omitempty"`
	Provider      *string `json:"provider,omitempty"`
	Skill         *string `json:"skill,omitempty"`
}

// reservedKeys are node object keys owned by nodeJSON.
var reservedKeys = map[string]bool{
	"node_id": true, "node_type": true, "description": true,
	"inputs": true, "outputs": true, "next": true, "position": true,
	"scriptType": true, "scriptContent": true, "toolName": true,
	"provider": true, "skill": true,
}

// MarshalJSON implements json.Marshaler. Nil port and next lists encode
// as empty arrays.
func (n Node) MarshalJSON() ([]byte, error) {
	wire := nodeJSON{
		ID:          n.ID,
		Kind:        n.Kind,
		Description: n.Description,
		Inputs:      orEmpty(n.Inputs),
		Outputs:     orEmpty(n.Outputs),
		Next:        orEmpty(n.Next),
		Position:    n.Position,
	}

	var ext ExtensionConfig
	switch cfg := n.Config.(type) {
	case ScriptConfig:
		wire.ScriptType, wire.ScriptContent = &cfg.ScriptType, &cfg.ScriptContent
	case ToolConfig:
		wire.ToolName = &cfg.ToolName
	case SkillConfig:
		wire.Provider, wire.Skill = &cfg.Provider, &cfg.Skill
	case ExtensionConfig:
		ext = cfg
	}

	data, err := json.Marshal(wire)
	if err != nil || ext.Len() == 0 {
		return data, err
	}

	// Splice extension keys before the closing brace, sorted for stable output.
	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	for _, key := range ext.Keys() {
		if reservedKeys[key] {
			continue
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(ext.Any(key, nil))
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(data []byte) error {
	var wire nodeJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*n = Node{
		ID:          wire.ID,
		Kind:        wire.Kind,
		Description: wire.Description,
		Inputs:      wire.Inputs,
		Outputs:     wire.Outputs,
		Next:        wire.Next,
		Position:    wire.Position,
	}

	switch wire.Kind {
	case KindScriptExecution:
		if wire.ScriptType != nil || wire.ScriptContent != nil {
			n.Config = ScriptConfig{ScriptType: deref(wire.ScriptType), ScriptContent: deref(wire.ScriptContent)}
		}
	case KindToolCall:
		if wire.ToolName != nil {
			n.Config = ToolConfig{ToolName: *wire.ToolName}
		}
	case KindSkillCall:
		if wire.Provider != nil || wire.Skill != nil {
			n.Config = SkillConfig{Provider: deref(wire.Provider), Skill: deref(wire.Skill)}
		}
	default:
		if wire.Kind.Known() {
			return nil
		}
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		extra := make(map[string]any)
		for k, v := range raw {
			if !reservedKeys[k] {
				extra[k] = v
			}
		}
		if len(extra) > 0 {
			n.Config = ExtensionConfig{config.New(extra)}
		}
	}
	return nil
}

// DecodeConfig reads the configuration fields of a node of kind k from a
// JSON object, using the same keys as the node wire form ("toolName",
// "scriptType", ...). The result always satisfies k.Accepts. An object
// without the kind's keys yields nil.
func DecodeConfig(k NodeKind, data []byte) (NodeConfig, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode %s config: %w", k, err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	fields["node_type"] = k

	doc, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var n Node
	if err := json.Unmarshal(doc, &n); err != nil {
		return nil, fmt.Errorf("decode %s config: %w", k, err)
	}
	return n.Config, nil
}

// clone returns a deep copy of the node's slices and position.
// Config values are immutable and shared.
func (n Node) clone() Node {
	c := n
	c.Inputs = slices.Clone(n.Inputs)
	c.Outputs = slices.Clone(n.Outputs)
	c.Next = slices.Clone(n.Next)
	if n.Position != nil {
		p := *n.Position
		c.Position = &p
	}
	return c
}

// ports returns the port list for dir.
func (n Node) ports(dir PortDirection) []string {
	if dir == PortInput {
		return n.Inputs
	}
	return n.Outputs
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// truncateRunes cuts s to at most limit runes.
func truncateRunes(s string, limit int) string {
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
