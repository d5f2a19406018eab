package agentgraph_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
)

func TestImport(t *testing.T) {
	doc := `{
		"name": "support",
		"description": "triage",
		"nodes": [
			{"node_id": "ask", "node_type": "UserInput", "inputs": [], "outputs": ["Output"], "next": ["reply"]},
			{"node_id": "reply", "node_type": "AgentResponse", "inputs": ["Input"], "outputs": ["Output"], "next": []}
		],
		"edges": [
			{"id": "e1", "source": "ask", "target": "reply", "sourcePortIndex": 0, "targetPortIndex": 0}
		]
	}`

	w, err := agentgraph.Import([]byte(doc))

	require.NoError(t, err)
	assert.Equal(t, "support", w.Name)
	assert.Equal(t, "triage", w.Description)
	require.Len(t, w.Nodes, 2)
	require.Len(t, w.Edges, 1)
	assert.NoError(t, agentgraph.Validate(w))
}

func TestImport_InvalidDocument(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"not json", `nodes: []`},
		{"array", `[]`},
		{"missing edges", `{"nodes": []}`},
		{"missing nodes", `{"edges": []}`},
		{"nodes not array", `{"nodes": {}, "edges": []}`},
		{"edges null", `{"nodes": [], "edges": null}`},
		{"bad node", `{"nodes": [{"node_id": 3}], "edges": []}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := agentgraph.Import([]byte(tc.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, agentgraph.ErrInvalidDocument)
		})
	}
}

func TestImport_PrunesBrokenEdges(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	doc := `{
		"nodes": [
			{"node_id": "a", "node_type": "UserInput", "inputs": [], "outputs": ["Output"], "next": []},
			{"node_id": "b", "node_type": "AgentAction", "inputs": ["Input"], "outputs": [], "next": []}
		],
		"edges": [
			{"id": "ok", "source": "a", "target": "b", "sourcePortIndex": 0, "targetPortIndex": 0},
			{"id": "dangling", "source": "a", "target": "zzz", "sourcePortIndex": 0, "targetPortIndex": 0},
			{"id": "port", "source": "a", "target": "b", "sourcePortIndex": 3, "targetPortIndex": 0}
		]
	}`

	w, err := agentgraph.Import([]byte(doc), agentgraph.WithImportLogger(logger))

	require.NoError(t, err)
	require.Len(t, w.Edges, 1)
	assert.Equal(t, "ok", w.Edges[0].ID)
	assert.Contains(t, buf.String(), `"edge_id":"dangling"`)
	assert.Contains(t, buf.String(), `"edge_id":"port"`)
}

func TestIsWorkflowDocument(t *testing.T) {
	assert.True(t, agentgraph.IsWorkflowDocument([]byte(`{"nodes":[],"edges":[]}`)))
	assert.True(t, agentgraph.IsWorkflowDocument([]byte(`{"name":"x","nodes":[ ],"edges":[],"extra":1}`)))
	assert.False(t, agentgraph.IsWorkflowDocument([]byte(`{"nodes":[]}`)))
	assert.False(t, agentgraph.IsWorkflowDocument([]byte(`hello`)))
}
