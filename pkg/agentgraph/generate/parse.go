package generate

import (
	"encoding/json"
	"strings"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
	agerrors "github.com/randalmurphal/agentgraph/pkg/agentgraph/errors"
)

// maxEchoedInput bounds the raw output kept on a JSONParseError.
const maxEchoedInput = 2000

// extractJSON returns the JSON object inside a model answer. A fenced
// block (```json or ```) wins; otherwise the span from the first '{' to the
// last '}' is used.
func extractJSON(raw string) (string, bool) {
	if start := strings.Index(raw, "```"); start >= 0 {
		body := raw[start+3:]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			// Drop the info string ("json").
			body = body[nl+1:]
		}
		if end := strings.Index(body, "```"); end >= 0 {
			if inner := strings.TrimSpace(body[:end]); strings.HasPrefix(inner, "{") {
				return inner, true
			}
		}
	}

	first := strings.IndexByte(raw, '{')
	last := strings.LastIndexByte(raw, '}')
	if first < 0 || last <= first {
		return "", false
	}
	return raw[first : last+1], true
}

// parseResponse decodes a generation answer. Failures are *JSONParseError.
func parseResponse(raw string) (agentgraph.GenerationResponse, error) {
	doc, ok := extractJSON(raw)
	if !ok {
		return agentgraph.GenerationResponse{}, &agerrors.JSONParseError{
			Input:   truncate(raw),
			Message: "no JSON object in model output",
		}
	}

	var resp agentgraph.GenerationResponse
	if err := json.Unmarshal([]byte(doc), &resp); err != nil {
		return agentgraph.GenerationResponse{}, &agerrors.JSONParseError{
			Input:   truncate(raw),
			Message: err.Error(),
		}
	}
	return resp, nil
}

func truncate(s string) string {
	if len(s) <= maxEchoedInput {
		return s
	}
	return s[:maxEchoedInput]
}
