// Package cli implements the agentgraph command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/agentgraph/internal/settings"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/generate"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/locale"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/observability"
)

// app carries state shared by every subcommand.
type app struct {
	configPath string
	envFile    string
	lang       string
	logLevel   string
	logFormat  string
	output     string

	settings  settings.Settings
	logger    *slog.Logger
	providers *observability.Providers

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// newCompleter builds the model backend. Tests replace it.
	newCompleter func(ctx context.Context, cfg generate.ProviderConfig) (generate.Completer, error)
}

// Execute runs the root command with the process arguments.
func Execute() {
	cmd := NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree reading from stdin and writing
// results to stdout and logs to stderr.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	return (&app{
		stdin:        stdin,
		stdout:       stdout,
		stderr:       stderr,
		newCompleter: generate.NewCompleter,
	}).rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "agentgraph",
		Short: "Build, repair and render agent workflow graphs",
		Long: `agentgraph edits agent workflows: directed graphs of typed steps
(user input, reasoning, conditions, tool and skill calls).

It repairs workflows produced by language models, renders them as JSON,
Mermaid, Markdown or an SOP prompt, generates them from a description,
and serves all of this over HTTP.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.providers == nil {
				return nil
			}
			return a.providers.Shutdown(context.Background())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (.yaml, .json or .toml)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file with AGENTGRAPH_* variables")
	flags.StringVar(&a.lang, "lang", "", "language for labels and prompts (BCP-47, e.g. en, zh-CN)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text or json")
	flags.StringVarP(&a.output, "output", "o", "", "write the result to this file instead of stdout")

	root.AddCommand(
		a.repairCommand(),
		a.validateCommand(),
		a.exportCommand(),
		a.generateCommand(),
		a.sopCommand(),
		a.serveCommand(),
	)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	return root
}

// setup resolves settings, applies flag overrides and installs the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var envFiles []string
	if a.envFile != "" {
		envFiles = append(envFiles, a.envFile)
	}
	s, err := settings.Load(a.configPath, envFiles...)
	if err != nil {
		return err
	}
	if a.lang != "" {
		s.Language = a.lang
	}
	if a.logLevel != "" {
		s.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		s.LogFormat = a.logFormat
	}
	a.settings = s

	logger, err := newLogger(a.stderr, s.LogLevel, s.LogFormat)
	if err != nil {
		return err
	}
	a.logger = logger
	slog.SetDefault(logger)

	if s.Telemetry {
		a.providers = observability.InstallProviders(logger)
	}
	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log format %q: want text or json", format)
	}
}

func (a *app) bundle() locale.Bundle {
	return locale.For(a.settings.Language)
}

// readInput reads the named file, or stdin for "-".
func (a *app) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(a.stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeResult writes text to --output or stdout, ending with a newline.
func (a *app) writeResult(text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if a.output == "" {
		_, err := io.WriteString(a.stdout, text)
		return err
	}
	if err := os.WriteFile(a.output, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", a.output, err)
	}
	a.logger.Info("wrote result", slog.String("path", a.output))
	return nil
}
