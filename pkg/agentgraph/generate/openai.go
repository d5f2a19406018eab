package generate

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	agerrors "github.com/randalmurphal/agentgraph/pkg/agentgraph/errors"
)

// OpenAI completes prompts with the chat completions API. It also serves
// OpenAI-compatible endpoints such as Ollama.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int
	provider  string
}

// NewOpenAI creates an OpenAI completer. An empty baseURL uses the
// OpenAI default.
func NewOpenAI(apiKey, model, baseURL string, maxTokens int) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: maxTokens,
		provider:  ProviderOpenAI,
	}
}

// NewOllama creates a completer for an Ollama server through its
// OpenAI-compatible API. baseURL is the server root; "/v1" is appended
// when missing.
func NewOllama(model, baseURL string) *OpenAI {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL = strings.TrimRight(baseURL, "/") + "/v1"
	}
	// Ollama ignores the key but the client requires one.
	c := NewOpenAI("ollama", model, baseURL, 0)
	c.provider = ProviderOllama
	return c
}

// Complete implements Completer.
func (c *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", c.translate(err)
	}
	if len(resp.Choices) == 0 {
		return "", &agerrors.EmptyResponseError{Operation: c.provider + " chat completion"}
	}
	return resp.Choices[0].Message.Content, nil
}

// translate maps client errors carrying an HTTP status to HTTPError.
func (c *OpenAI) translate(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &agerrors.HTTPError{
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Provider:   c.provider,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &agerrors.HTTPError{
			StatusCode: reqErr.HTTPStatusCode,
			Message:    reqErr.Error(),
			Provider:   c.provider,
		}
	}
	return err
}
