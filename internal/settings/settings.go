// Package settings assembles the runtime configuration of the agentgraph
// command from a config file, a .env file and AGENTGRAPH_* variables.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/config"
	agerrors "github.com/randalmurphal/agentgraph/pkg/agentgraph/errors"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/generate"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/view"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AGENTGRAPH_"

// Settings is the resolved configuration. Later sources win:
// defaults, then the config file, then the environment.
type Settings struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int

	// Language is the default BCP-47 tag for labels and prompts.
	Language string

	Listen string
	// StorePath is the SQLite file for stored workflows. Empty keeps them
	// in memory.
	StorePath string

	ChartBase string

	RetryAttempts  int
	RequestTimeout time.Duration

	LogLevel  string
	LogFormat string
	// Telemetry enables OpenTelemetry metrics and spans.
	Telemetry bool
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Provider:       generate.ProviderOllama,
		Model:          "llama3.1",
		Language:       "en",
		Listen:         ":8080",
		ChartBase:      view.DefaultChartBase,
		RetryAttempts:  agerrors.DefaultRetry.MaxAttempts,
		RequestTimeout: 2 * time.Minute,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// providerKeyEnv names the conventional key variable of each hosted
// provider, consulted when no key is configured.
var providerKeyEnv = map[string]string{
	generate.ProviderOpenAI:    "OPENAI_API_KEY",
	generate.ProviderAnthropic: "ANTHROPIC_API_KEY",
	generate.ProviderGemini:    "GEMINI_API_KEY",
}

// Load resolves settings. configPath may be empty. Missing env files are
// skipped; variables already set in the process are not overridden.
func Load(configPath string, envFiles ...string) (Settings, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	s := Default()
	if configPath != "" {
		cfg, err := config.FromFile(configPath)
		if err != nil {
			return Settings{}, err
		}
		s = s.apply(cfg)
	}

	s, err := s.applyEnv(os.LookupEnv)
	if err != nil {
		return Settings{}, err
	}

	if s.APIKey == "" {
		if name, ok := providerKeyEnv[strings.ToLower(s.Provider)]; ok {
			s.APIKey = os.Getenv(name)
		}
	}
	return s, s.Validate()
}

// apply overlays a config file:
//
//	llm:
//	  provider: openai
//	  model: gpt-4o-mini
//	  api_key: ...
//	  base_url: ...
//	  max_tokens: 4096
//	  retry_attempts: 3
//	  timeout: 2m
//	server:
//	  listen: ":8080"
//	  store: workflows.db
//	language: en
//	chart_base: https://mermaid.ink/img/
//	log:
//	  level: info
//	  format: text
//	telemetry: false
func (s Settings) apply(cfg config.Config) Settings {
	llm := cfg.Section("llm")
	s.Provider = llm.String("provider", s.Provider)
	s.Model = llm.String("model", s.Model)
	s.APIKey = llm.String("api_key", s.APIKey)
	s.BaseURL = llm.String("base_url", s.BaseURL)
	s.MaxTokens = llm.Int("max_tokens", s.MaxTokens)
	s.RetryAttempts = llm.Int("retry_attempts", s.RetryAttempts)
	s.RequestTimeout = llm.Duration("timeout", s.RequestTimeout)

	srv := cfg.Section("server")
	s.Listen = srv.String("listen", s.Listen)
	s.StorePath = srv.String("store", s.StorePath)

	s.Language = cfg.String("language", s.Language)
	s.ChartBase = cfg.String("chart_base", s.ChartBase)

	log := cfg.Section("log")
	s.LogLevel = log.String("level", s.LogLevel)
	s.LogFormat = log.String("format", s.LogFormat)

	s.Telemetry = cfg.Bool("telemetry", s.Telemetry)
	return s
}

func (s Settings) applyEnv(lookup func(string) (string, bool)) (Settings, error) {
	strs := map[string]*string{
		"PROVIDER":   &s.Provider,
		"MODEL":      &s.Model,
		"API_KEY":    &s.APIKey,
		"BASE_URL":   &s.BaseURL,
		"LANG":       &s.Language,
		"LISTEN":     &s.Listen,
		"STORE":      &s.StorePath,
		"CHART_BASE": &s.ChartBase,
		"LOG_LEVEL":  &s.LogLevel,
		"LOG_FORMAT": &s.LogFormat,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"MAX_TOKENS":     &s.MaxTokens,
		"RETRY_ATTEMPTS": &s.RetryAttempts,
	}
	for name, dst := range ints {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return s, fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = n
		}
	}

	if v, ok := lookup(EnvPrefix + "TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return s, fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		s.RequestTimeout = d
	}
	if v, ok := lookup(EnvPrefix + "TELEMETRY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s, fmt.Errorf("%sTELEMETRY: %w", EnvPrefix, err)
		}
		s.Telemetry = b
	}
	return s, nil
}

// Validate reports settings no component can work with.
func (s Settings) Validate() error {
	var errs []error
	if s.RetryAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry attempts must be at least 1, got %d", s.RetryAttempts))
	}
	if s.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request timeout must not be negative, got %s", s.RequestTimeout))
	}
	if s.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("max tokens must not be negative, got %d", s.MaxTokens))
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", s.LogFormat))
	}
	return errors.Join(errs...)
}

// ProviderConfig returns the model backend selection.
func (s Settings) ProviderConfig() generate.ProviderConfig {
	return generate.ProviderConfig{
		Provider:  s.Provider,
		Model:     s.Model,
		APIKey:    s.APIKey,
		BaseURL:   s.BaseURL,
		MaxTokens: s.MaxTokens,
	}
}

// Retry returns the retry policy for model calls.
func (s Settings) Retry() agerrors.RetryConfig {
	return agerrors.NewRetryConfig(agerrors.WithMaxAttempts(s.RetryAttempts))
}
