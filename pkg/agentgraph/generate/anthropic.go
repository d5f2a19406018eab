package generate

import (
	"context"
	"errors"

	"github.com/liushuangls/go-anthropic/v2"

	agerrors "github.com/randalmurphal/agentgraph/pkg/agentgraph/errors"
)

// DefaultMaxTokens caps answers when the configuration sets no limit.
// The Messages API requires one.
const DefaultMaxTokens = 4096

// Anthropic completes prompts with the Anthropic Messages API.
type Anthropic struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropic creates an Anthropic completer. An empty baseURL uses the
// API default.
func NewAnthropic(apiKey, model, baseURL string, maxTokens int) *Anthropic {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Anthropic{
		client:    anthropic.NewClient(apiKey, opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Complete implements Completer.
func (c *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(prompt)},
			},
		},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", translateAnthropic(err)
	}
	for _, part := range resp.Content {
		if part.Text != nil {
			return *part.Text, nil
		}
	}
	return "", &agerrors.EmptyResponseError{Operation: "anthropic messages"}
}

func translateAnthropic(err error) error {
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode != 0 {
		return &agerrors.HTTPError{StatusCode: reqErr.StatusCode, Message: reqErr.Error(), Provider: ProviderAnthropic}
	}
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsRateLimitErr():
			return &agerrors.HTTPError{StatusCode: 429, Message: apiErr.Message, Provider: ProviderAnthropic}
		case apiErr.IsOverloadedErr(), apiErr.IsApiErr():
			return &agerrors.HTTPError{StatusCode: 529, Message: apiErr.Message, Provider: ProviderAnthropic}
		}
	}
	return err
}
