package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider names accepted by NewCompleter.
const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderClaudeCLI = "claude-cli"
)

// ErrUnknownProvider is returned by NewCompleter for an unsupported provider.
var ErrUnknownProvider = errors.New("unknown model provider")

// ErrMissingAPIKey is returned by NewCompleter when a hosted provider has
// no API key.
var ErrMissingAPIKey = errors.New("missing API key")

// ProviderConfig selects and configures a model backend.
type ProviderConfig struct {
	// Provider is one of the Provider* constants. Case-insensitive.
	Provider string
	Model    string
	APIKey   string
	// BaseURL overrides the provider endpoint (Ollama server root,
	// OpenAI-compatible gateway, Anthropic proxy, Gemini endpoint).
	BaseURL   string
	MaxTokens int
}

// NewCompleter builds the Completer named by cfg.Provider.
func NewCompleter(ctx context.Context, cfg ProviderConfig) (Completer, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	switch provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("%w for %s", ErrMissingAPIKey, provider)
		}
		return NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxTokens), nil

	case ProviderOllama:
		return NewOllama(cfg.Model, cfg.BaseURL), nil

	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w for %s", ErrMissingAPIKey, provider)
		}
		return NewAnthropic(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxTokens), nil

	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w for %s", ErrMissingAPIKey, provider)
		}
		return NewGemini(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL)

	case ProviderClaudeCLI:
		return NewClaudeCLI(cfg.Model), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
