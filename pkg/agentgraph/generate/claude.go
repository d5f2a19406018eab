package generate

import (
	"context"

	"github.com/randalmurphal/llmkit/claude"
)

// claudeCompleter adapts an llmkit client.
type claudeCompleter struct {
	client claude.Client
}

// FromClaude adapts an llmkit claude.Client (the Claude CLI client or its
// mock) to Completer.
func FromClaude(client claude.Client) Completer {
	return &claudeCompleter{client: client}
}

// NewClaudeCLI returns a Completer backed by the local Claude CLI.
func NewClaudeCLI(model string) Completer {
	var opts []claude.ClaudeOption
	if model != "" {
		opts = append(opts, claude.WithModel(model))
	}
	return FromClaude(claude.NewClaudeCLI(opts...))
}

func (c *claudeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Complete(ctx, claude.CompletionRequest{
		Messages: []claude.Message{
			{Role: claude.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
