package agentgraph_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
)

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, agentgraph.Validate(sample(t)))
	assert.NoError(t, agentgraph.Validate(agentgraph.Workflow{}))
}

func TestValidate_Violations(t *testing.T) {
	base := func() agentgraph.Workflow { return sample(t) }

	testCases := []struct {
		name   string
		mutate func(w agentgraph.Workflow) agentgraph.Workflow
		want   error
	}{
		{
			name: "duplicate node",
			mutate: func(w agentgraph.Workflow) agentgraph.Workflow {
				w.Nodes = append(w.Nodes, w.Nodes[0])
				return w
			},
			want: agentgraph.ErrDuplicateNode,
		},
		{
			name: "non-canonical node ID",
			mutate: func(w agentgraph.Workflow) agentgraph.Workflow {
				w.Nodes = append(w.Nodes, agentgraph.Node{ID: "Bad ID", Kind: agentgraph.KindAction})
				return w
			},
			want: agentgraph.ErrInvalidNodeID,
		},
		{
			name: "duplicate edge",
			mutate: func(w agentgraph.Workflow) agentgraph.Workflow {
				w.Edges = append(w.Edges, w.Edges[0])
				return w
			},
			want: agentgraph.ErrDuplicateEdge,
		},
		{
			name: "dangling target",
			mutate: func(w agentgraph.Workflow) agentgraph.Workflow {
				w.Edges = append(w.Edges, agentgraph.Edge{ID: "x", Source: "start", Target: "ghost"})
				return w
			},
			want: agentgraph.ErrDanglingEdge,
		},
		{
			name: "source port out of range",
			mutate: func(w agentgraph.Workflow) agentgraph.Workflow {
				w.Edges = append(w.Edges, agentgraph.Edge{ID: "x", Source: "start", Target: "done", SourcePortIndex: 4})
				return w
			},
			want: agentgraph.ErrPortOutOfRange,
		},
		{
			name: "target port out of range",
			mutate: func(w agentgraph.Workflow) agentgraph.Workflow {
				w.Edges = append(w.Edges, agentgraph.Edge{ID: "x", Source: "start", Target: "done", TargetPortIndex: -1})
				return w
			},
			want: agentgraph.ErrPortOutOfRange,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := agentgraph.Validate(tc.mutate(base()))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var ve *agentgraph.ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	w := sample(t)
	w.Nodes = append(w.Nodes, agentgraph.Node{ID: "Bad ID"})
	w.Edges = append(w.Edges, agentgraph.Edge{ID: "x", Source: "ghost", Target: "done"})

	err := agentgraph.Validate(w)

	assert.ErrorIs(t, err, agentgraph.ErrInvalidNodeID)
	assert.ErrorIs(t, err, agentgraph.ErrDanglingEdge)
	assert.Contains(t, err.Error(), "edge x")
}
