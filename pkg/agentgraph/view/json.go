package view

import (
	"encoding/json"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
)

// JSON renders the clean interchange form of w: positions stripped,
// two-space indentation. Import accepts the result unchanged.
func JSON(w agentgraph.Workflow) (string, error) {
	data, err := json.MarshalIndent(w.WithoutPositions(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
