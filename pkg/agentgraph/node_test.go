package agentgraph_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/config"
)

func TestNode_MarshalJSON(t *testing.T) {
	testCases := []struct {
		name string
		node agentgraph.Node
		want string
	}{
		{
			name: "plain node with nil lists",
			node: agentgraph.Node{ID: "think", Kind: agentgraph.KindReasoning},
			want: `{"node_id":"think","node_type":"AgentReasoning","description":"","inputs":[],"outputs":[],"next":[]}`,
		},
		{
			name: "script with position",
			node: agentgraph.Node{
				ID:       "run",
				Kind:     agentgraph.KindScriptExecution,
				Inputs:   []string{"in"},
				Outputs:  []string{"out"},
				Next:     []string{},
				Position: &agentgraph.Position{X: 1, Y: 2},
				Config:   agentgraph.ScriptConfig{ScriptType: "python", ScriptContent: "print(1)"},
			},
			want: `{"node_id":"run","node_type":"ScriptExecution","description":"","inputs":["in"],"outputs":["out"],"next":[],"position":{"x":1,"y":2},"scriptType":"python","scriptContent":"print(1)"}`,
		},
		{
			name: "tool",
			node: agentgraph.Node{ID: "t", Kind: agentgraph.KindToolCall, Config: agentgraph.ToolConfig{ToolName: "search"}},
			want: `{"node_id":"t","node_type":"ToolCall","description":"","inputs":[],"outputs":[],"next":[],"toolName":"search"}`,
		},
		{
			name: "skill",
			node: agentgraph.Node{ID: "s", Kind: agentgraph.KindSkillCall, Config: agentgraph.SkillConfig{Provider: "acme", Skill: "sum"}},
			want: `{"node_id":"s","node_type":"SkillCall","description":"","inputs":[],"outputs":[],"next":[],"provider":"acme","skill":"sum"}`,
		},
		{
			name: "extension keys sorted after known keys",
			node: agentgraph.Node{
				ID:   "hook",
				Kind: "Webhook",
				Config: agentgraph.ExtensionConfig{Config: config.New(map[string]any{
					"url":     "https://example.com",
					"method":  "POST",
					"node_id": "ignored",
				})},
			},
			want: `{"node_id":"hook","node_type":"Webhook","description":"","inputs":[],"outputs":[],"next":[],"method":"POST","url":"https://example.com"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.node)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(data))
		})
	}
}

func TestNode_UnmarshalJSON(t *testing.T) {
	t.Run("script config", func(t *testing.T) {
		var n agentgraph.Node
		require.NoError(t, json.Unmarshal([]byte(`{"node_id":"r","node_type":"ScriptExecution","scriptType":"bash"}`), &n))
		assert.Equal(t, agentgraph.ScriptConfig{ScriptType: "bash"}, n.Config)
	})

	t.Run("missing config stays nil", func(t *testing.T) {
		var n agentgraph.Node
		require.NoError(t, json.Unmarshal([]byte(`{"node_id":"t","node_type":"ToolCall"}`), &n))
		assert.Nil(t, n.Config)
		assert.Nil(t, n.Inputs)
		assert.Nil(t, n.Position)
	})

	t.Run("config keys of other kinds are ignored", func(t *testing.T) {
		var n agentgraph.Node
		require.NoError(t, json.Unmarshal([]byte(`{"node_id":"a","node_type":"AgentAction","toolName":"x"}`), &n))
		assert.Nil(t, n.Config)
	})

	t.Run("extension kind keeps extra keys", func(t *testing.T) {
		var n agentgraph.Node
		require.NoError(t, json.Unmarshal([]byte(`{"node_id":"h","node_type":"Webhook","url":"u","retries":3,"next":["a"]}`), &n))
		ext, ok := n.Config.(agentgraph.ExtensionConfig)
		require.True(t, ok, "got %T", n.Config)
		assert.Equal(t, "u", ext.String("url", ""))
		assert.Equal(t, 3, ext.Int("retries", 0))
		assert.False(t, ext.Has("next"))
		assert.Equal(t, []string{"a"}, n.Next)
	})

	t.Run("empty lists stay empty", func(t *testing.T) {
		var n agentgraph.Node
		require.NoError(t, json.Unmarshal([]byte(`{"node_id":"u","node_type":"UserInput","inputs":[]}`), &n))
		assert.NotNil(t, n.Inputs)
		assert.Empty(t, n.Inputs)
		assert.Nil(t, n.Outputs)
	})
}

// TestWorkflow_ExportRoundTrip checks that the clean export reproduces
// every field except position.
func TestWorkflow_ExportRoundTrip(t *testing.T) {
	w := sample(t)
	w = w.SetConfig("start", agentgraph.ToolConfig{ToolName: "ignored-on-input-kind"})
	w, _ = w.AddNode("Webhook", agentgraph.WithIDSource(sequence("ext1")))
	w = w.SetConfig("webhook_ext1", agentgraph.ExtensionConfig{Config: config.New(map[string]any{"url": "u"})})
	w = w.SetEdgeLabel("edge-gate-start-1", "retry").MarkLoop("edge-gate-start-1", true)
	w.Description = "round trip"

	data, err := json.Marshal(w.WithoutPositions())
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"position"`)

	back, err := agentgraph.Import(data)
	require.NoError(t, err)

	start, _ := back.Node("start")
	assert.Nil(t, start.Config)
	assert.Equal(t, w.WithoutPositions(), back)
}

func TestWorkflow_MarshalNilListsAsArrays(t *testing.T) {
	w, _ := agentgraph.Workflow{Name: "fresh"}.AddNode(agentgraph.KindInput)
	require.Nil(t, w.Edges)

	data, err := json.Marshal(w)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"edges":[]`)

	back, err := agentgraph.Import(data)
	require.NoError(t, err)
	assert.Len(t, back.Nodes, 1)
	assert.Empty(t, back.Edges)

	data, err = json.Marshal(agentgraph.Workflow{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "", "description": "", "nodes": [], "edges": []}`, string(data))
}

func TestWorkflow_WithoutPositionsDoesNotModify(t *testing.T) {
	w := sample(t)
	_ = w.WithoutPositions()
	for _, n := range w.Nodes {
		assert.NotNil(t, n.Position)
	}
}

func TestDecodeConfig(t *testing.T) {
	tests := []struct {
		name    string
		kind    agentgraph.NodeKind
		doc     string
		want    agentgraph.NodeConfig
		wantErr bool
	}{
		{name: "script", kind: agentgraph.KindScriptExecution, doc: `{"scriptType": "bash", "scriptContent": "ls"}`,
			want: agentgraph.ScriptConfig{ScriptType: "bash", ScriptContent: "ls"}},
		{name: "tool", kind: agentgraph.KindToolCall, doc: `{"toolName": "grep"}`, want: agentgraph.ToolConfig{ToolName: "grep"}},
		{name: "skill", kind: agentgraph.KindSkillCall, doc: `{"provider": "acme", "skill": "sum"}`,
			want: agentgraph.SkillConfig{Provider: "acme", Skill: "sum"}},
		{name: "foreign keys ignored", kind: agentgraph.KindToolCall, doc: `{"scriptType": "bash"}`, want: nil},
		{name: "built-in kind without config", kind: agentgraph.KindReasoning, doc: `{"model": "x"}`, want: nil},
		{name: "extension", kind: "Webhook", doc: `{"url": "u", "node_id": "ignored"}`,
			want: agentgraph.ExtensionConfig{Config: config.New(map[string]any{"url": "u"})}},
		{name: "null", kind: agentgraph.KindToolCall, doc: `null`, want: nil},
		{name: "wrong type", kind: agentgraph.KindToolCall, doc: `{"toolName": 3}`, wantErr: true},
		{name: "not an object", kind: agentgraph.KindToolCall, doc: `[1]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := agentgraph.DecodeConfig(tt.kind, []byte(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, tt.kind.Accepts(got))
		})
	}
}
