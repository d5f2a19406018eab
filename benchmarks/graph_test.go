package benchmarks

import (
	"fmt"
	"testing"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
)

func nodeID(n int) string {
	return fmt.Sprintf("Step %d", n)
}

// buildGeneratedChain returns an unrepaired chain of n nodes the way a model
// emits one: raw IDs, next lists only, no edges or ports.
func buildGeneratedChain(n int) agentgraph.Workflow {
	w := agentgraph.Workflow{Name: "bench"}
	for i := 0; i < n; i++ {
		node := agentgraph.Node{ID: nodeID(i), Kind: agentgraph.KindAction}
		if i+1 < n {
			node.Next = []string{nodeID(i + 1)}
		}
		w.Nodes = append(w.Nodes, node)
	}
	return w
}

// buildBranchingWorkflow has a condition fanning out to two chains.
func buildBranchingWorkflow() agentgraph.Workflow {
	return agentgraph.Workflow{
		Name: "branching",
		Nodes: []agentgraph.Node{
			{ID: "start", Kind: agentgraph.KindInput, Next: []string{"Is Urgent?"}},
			{ID: "Is Urgent?", Kind: agentgraph.KindCondition, Next: []string{"page", "reply"}},
			{ID: "page", Kind: agentgraph.KindAction, Next: []string{"done"}},
			{ID: "reply", Kind: agentgraph.KindResponse, Next: []string{"done"}},
			{ID: "done", Kind: agentgraph.KindResponse},
		},
	}
}

func BenchmarkNormalize(b *testing.B) {
	for i := 0; i < b.N; i++ {
		agentgraph.Normalize("  Check Inventory Level (warehouse #3)!! ")
	}
}

func BenchmarkRepair_Chain_5(b *testing.B) {
	w := buildGeneratedChain(5)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = agentgraph.Repair(w)
	}
}

func BenchmarkRepair_Chain_50(b *testing.B) {
	w := buildGeneratedChain(50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = agentgraph.Repair(w)
	}
}

func BenchmarkRepair_Chain_500(b *testing.B) {
	w := buildGeneratedChain(500)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = agentgraph.Repair(w)
	}
}

func BenchmarkRepair_Branching(b *testing.B) {
	w := buildBranchingWorkflow()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = agentgraph.Repair(w)
	}
}

// BenchmarkRepair_AlreadyRepaired measures the idempotent second pass.
func BenchmarkRepair_AlreadyRepaired(b *testing.B) {
	w := agentgraph.Repair(buildGeneratedChain(50))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = agentgraph.Repair(w)
	}
}

func BenchmarkValidate_50(b *testing.B) {
	w := agentgraph.Repair(buildGeneratedChain(50))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = agentgraph.Validate(w)
	}
}

func BenchmarkAddNode_10(b *testing.B) {
	for i := 0; i < b.N; i++ {
		w := agentgraph.Workflow{}
		for j := 0; j < 10; j++ {
			w, _ = w.AddNode(agentgraph.KindAction)
		}
	}
}

func BenchmarkConnect_Chain_50(b *testing.B) {
	base := agentgraph.Repair(buildGeneratedChain(50))
	base.Edges = nil
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := base
		for j := 0; j+1 < len(base.Nodes); j++ {
			w = w.Connect(base.Nodes[j].ID, base.Nodes[j+1].ID, 0, 0)
		}
	}
}

// BenchmarkDeleteNode_Cascade removes the middle node of a repaired chain.
func BenchmarkDeleteNode_Cascade(b *testing.B) {
	w := agentgraph.Repair(buildGeneratedChain(50))
	mid := w.Nodes[25].ID
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = w.DeleteNode(mid)
	}
}
