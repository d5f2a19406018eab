package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/agentgraph/internal/server"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/generate"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/observability"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/store"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/view"
)

func (a *app) repairCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repair FILE",
		Short: "Repair a model-produced workflow or generation response",
		Long: `Repair reads a workflow (an object with "nodes") or a generation response
(an object with "confirmation" and "workflow") and prints it repaired:
canonical node IDs, default ports, positions and edges rebuilt from "next".

Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(args[0])
			if err != nil {
				return err
			}

			var top map[string]json.RawMessage
			if err := json.Unmarshal(data, &top); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}

			opts := []agentgraph.RepairOption{
				agentgraph.WithRepairLocale(a.bundle()),
				agentgraph.WithRepairLogger(a.logger),
			}

			var result any
			if _, isWorkflow := top["nodes"]; !isWorkflow && top["workflow"] != nil {
				var resp agentgraph.GenerationResponse
				if err := json.Unmarshal(data, &resp); err != nil {
					return fmt.Errorf("decode %s: %w", args[0], err)
				}
				result = agentgraph.RepairResponse(resp, opts...)
			} else {
				var w agentgraph.Workflow
				if err := json.Unmarshal(data, &w); err != nil {
					return fmt.Errorf("decode %s: %w", args[0], err)
				}
				result = agentgraph.Repair(w, opts...)
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			return a.writeResult(string(out))
		},
	}
}

func (a *app) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a workflow document against the structural rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(args[0])
			if err != nil {
				return err
			}
			if !agentgraph.IsWorkflowDocument(data) {
				return errors.New(a.bundle().InvalidImport)
			}

			var w agentgraph.Workflow
			if err := json.Unmarshal(data, &w); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			if err := agentgraph.Validate(w); err != nil {
				return fmt.Errorf("%s is invalid:\n%w", args[0], err)
			}
			return a.writeResult(fmt.Sprintf("%s: valid (%d nodes, %d edges)", args[0], len(w.Nodes), len(w.Edges)))
		},
	}
}

func (a *app) exportCommand() *cobra.Command {
	var (
		format   string
		chartURL bool
	)
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Render a workflow document as JSON, Mermaid, Markdown or an SOP prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := view.ParseFormat(format)
			if err != nil {
				return err
			}
			w, err := a.importFile(args[0])
			if err != nil {
				return err
			}

			content, err := view.Render(f, w, a.bundle())
			if err != nil {
				return err
			}
			if chartURL && f == view.FormatMermaid {
				content = strings.TrimRight(content, "\n") + "\n\n" +
					view.ChartURL(content, view.WithChartBase(a.settings.ChartBase))
			}
			return a.writeResult(content)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(view.FormatJSON), "output format: "+formatNames())
	cmd.Flags().BoolVar(&chartURL, "chart-url", false, "append a chart image URL to Mermaid output")
	return cmd
}

func (a *app) generateCommand() *cobra.Command {
	var (
		format   string
		provider string
		model    string
	)
	cmd := &cobra.Command{
		Use:   "generate PROMPT...",
		Short: "Generate a workflow from a description with a language model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := view.ParseFormat(format)
			if err != nil {
				return err
			}
			if provider != "" {
				a.settings.Provider = provider
			}
			if model != "" {
				a.settings.Model = model
			}

			g, err := a.generator(cmd.Context())
			if err != nil {
				return err
			}
			res, err := g.Workflow(cmd.Context(), strings.Join(args, " "), a.settings.Language)
			if err != nil {
				return err
			}

			if res.Response.Workflow == nil {
				// The model needs more detail; its question is the result.
				return a.writeResult(res.Response.Confirmation)
			}
			fmt.Fprintln(a.stderr, res.Response.Confirmation)

			content, err := view.Render(f, *res.Response.Workflow, a.bundle())
			if err != nil {
				return err
			}
			return a.writeResult(content)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(view.FormatJSON), "output format: "+formatNames())
	cmd.Flags().StringVar(&provider, "provider", "", "model provider: openai, ollama, anthropic, gemini, claude-cli")
	cmd.Flags().StringVar(&model, "model", "", "model name")
	return cmd
}

func (a *app) sopCommand() *cobra.Command {
	var promptOnly bool
	cmd := &cobra.Command{
		Use:   "sop FILE",
		Short: "Write a Standard Operating Procedure for a workflow document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.importFile(args[0])
			if err != nil {
				return err
			}
			if promptOnly {
				prompt, err := view.SOPPrompt(w, a.bundle())
				if err != nil {
					return err
				}
				return a.writeResult(prompt)
			}

			g, err := a.generator(cmd.Context())
			if err != nil {
				return err
			}
			text, err := g.SOP(cmd.Context(), w, a.settings.Language)
			if err != nil {
				return err
			}
			return a.writeResult(text)
		},
	}
	cmd.Flags().BoolVar(&promptOnly, "prompt-only", false, "print the SOP prompt instead of calling a model")
	return cmd
}

func (a *app) serveCommand() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen != "" {
				a.settings.Listen = listen
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			opts := []server.Option{
				server.WithLogger(a.logger),
				server.WithChartBase(a.settings.ChartBase),
				server.WithLanguage(a.settings.Language),
			}
			if a.settings.Telemetry {
				opts = append(opts, server.WithMetrics(observability.NewMetricsRecorder()))
			}
			if g, err := a.generator(cmd.Context()); err != nil {
				a.logger.Warn("generation disabled", slog.String("error", err.Error()))
			} else {
				opts = append(opts, server.WithGenerator(g))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(st, opts...).Run(ctx, a.settings.Listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from settings, :8080)")
	return cmd
}

// importFile reads and imports an interchange document.
func (a *app) importFile(path string) (agentgraph.Workflow, error) {
	data, err := a.readInput(path)
	if err != nil {
		return agentgraph.Workflow{}, err
	}
	w, err := agentgraph.Import(data, agentgraph.WithImportLogger(a.logger))
	if errors.Is(err, agentgraph.ErrInvalidDocument) {
		return agentgraph.Workflow{}, fmt.Errorf("%s: %s", path, a.bundle().InvalidImport)
	}
	return w, err
}

func (a *app) openStore() (store.Store, error) {
	if a.settings.StorePath == "" {
		a.logger.Info("using in-memory workflow store")
		return store.NewMemoryStore(), nil
	}
	a.logger.Info("using SQLite workflow store", slog.String("path", a.settings.StorePath))
	return store.NewSQLiteStore(a.settings.StorePath)
}

func (a *app) generator(ctx context.Context) (*generate.Generator, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := a.newCompleter(ctx, a.settings.ProviderConfig())
	if err != nil {
		return nil, err
	}

	opts := []generate.Option{
		generate.WithLogger(a.logger),
		generate.WithRetry(a.settings.Retry()),
		generate.WithTimeout(a.settings.RequestTimeout),
	}
	if a.settings.Telemetry {
		opts = append(opts,
			generate.WithMetrics(observability.NewMetricsRecorder()),
			generate.WithSpanManager(observability.NewSpanManager()),
		)
	}
	return generate.New(c, opts...), nil
}

func formatNames() string {
	names := make([]string, len(view.Formats))
	for i, f := range view.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
