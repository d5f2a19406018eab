package generate

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	agerrors "github.com/randalmurphal/agentgraph/pkg/agentgraph/errors"
)

// Gemini completes prompts with the Google Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini completer. Close releases its connection.
func NewGemini(ctx context.Context, apiKey, model, endpoint string) (*Gemini, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, model: model}, nil
}

// Complete implements Completer.
func (c *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.GenerativeModel(c.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return "", &agerrors.HTTPError{StatusCode: gerr.Code, Message: gerr.Message, Provider: ProviderGemini}
		}
		return "", err
	}

	var b strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				b.WriteString(string(txt))
			}
		}
	}
	if b.Len() == 0 {
		return "", &agerrors.EmptyResponseError{Operation: "gemini generate content"}
	}
	return b.String(), nil
}

// Close releases the client.
func (c *Gemini) Close() error {
	return c.client.Close()
}
