package generate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
	agerrors "github.com/randalmurphal/agentgraph/pkg/agentgraph/errors"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/locale"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/observability"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/view"
)

// Operation names used in logs, metrics and span names.
const (
	OpWorkflow = "workflow"
	OpSOP      = "sop"
)

// ErrEmptyPrompt is returned by Workflow for a blank request.
var ErrEmptyPrompt = errors.New("empty prompt")

// Result is the outcome of a workflow generation.
type Result struct {
	// Response is the repaired answer. Response.Workflow is nil when the
	// model asked a question instead of building a workflow.
	Response agentgraph.GenerationResponse
	// Attempts is the number of model calls made.
	Attempts int
	// Duration covers the model calls, including backoff.
	Duration time.Duration
}

// Generator turns natural-language requests into workflows and workflows
// into SOP text, using a Completer.
type Generator struct {
	completer Completer
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
	retry     agerrors.RetryConfig
	timeout   time.Duration
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. Default: no-op.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(g *Generator) {
		if m != nil {
			g.metrics = m
		}
	}
}

// WithSpanManager sets the tracer. Default: no-op.
func WithSpanManager(s observability.SpanManager) Option {
	return func(g *Generator) {
		if s != nil {
			g.spans = s
		}
	}
}

// WithRetry sets the retry policy for model calls. Default: errors.DefaultRetry.
func WithRetry(cfg agerrors.RetryConfig) Option {
	return func(g *Generator) { g.retry = cfg }
}

// WithTimeout bounds each model call. Zero means no per-call limit.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) { g.timeout = d }
}

// New creates a Generator.
func New(c Completer, opts ...Option) *Generator {
	g := &Generator{
		completer: c,
		logger:    slog.Default(),
		metrics:   observability.NoopMetrics{},
		spans:     observability.NoopSpanManager{},
		retry:     agerrors.DefaultRetry,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Workflow asks the model for a workflow matching request, written in the
// language lang names (a BCP-47 tag), and repairs the answer.
//
// Transient provider failures are retried. An answer without a JSON object
// fails with an error that IsInvalidOutput reports true for.
func (g *Generator) Workflow(ctx context.Context, request, lang string) (*Result, error) {
	if strings.TrimSpace(request) == "" {
		return nil, ErrEmptyPrompt
	}
	bundle := locale.For(lang)

	prompt, err := workflowPrompt(request, bundle)
	if err != nil {
		return nil, err
	}

	raw, attempts, duration, err := g.complete(ctx, OpWorkflow, bundle.Tag, prompt)
	if err != nil {
		return nil, err
	}

	resp, err := parseResponse(raw)
	if err != nil {
		observability.LogGenerationError(g.logger, OpWorkflow, err, float64(duration.Milliseconds()), attempts)
		return nil, agerrors.InvalidOutput(err, "generate workflow")
	}

	resp = agentgraph.RepairResponse(resp,
		agentgraph.WithRepairLocale(bundle),
		agentgraph.WithRepairLogger(g.logger),
		agentgraph.WithRepairMetrics(g.metrics),
	)
	return &Result{Response: resp, Attempts: attempts, Duration: duration}, nil
}

// SOP asks the model for a Standard Operating Procedure describing w,
// written in the language lang names.
func (g *Generator) SOP(ctx context.Context, w agentgraph.Workflow, lang string) (string, error) {
	bundle := locale.For(lang)
	prompt, err := view.SOPPrompt(w, bundle)
	if err != nil {
		return "", err
	}

	text, _, _, err := g.complete(ctx, OpSOP, bundle.Tag, prompt)
	if err != nil {
		return "", err
	}
	return text, nil
}

// complete runs one traced, measured and retried model call. Blank answers
// are invalid output.
func (g *Generator) complete(ctx context.Context, op, lang, prompt string) (string, int, time.Duration, error) {
	ctx, span := g.spans.StartGenerateSpan(ctx, op, lang)
	observability.LogGenerationStart(g.logger, op, lang)

	retry := g.retry
	retry.OnRetry = func(attempt int, err error, wait time.Duration) {
		observability.LogGenerationRetry(g.logger, op, attempt, err, wait)
		g.spans.AddSpanEvent(ctx, "retry",
			attribute.Int("attempt", attempt),
			attribute.String("error", err.Error()),
		)
		if g.retry.OnRetry != nil {
			g.retry.OnRetry(attempt, err, wait)
		}
	}

	res := agerrors.WithRetryContext(ctx, retry, func(callCtx context.Context) (string, error) {
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, g.timeout)
			defer cancel()
		}
		text, err := g.completer.Complete(callCtx, prompt)
		if err != nil {
			// Only the per-call limit is retryable; the caller's deadline is not.
			if g.timeout > 0 && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				return "", &agerrors.TimeoutError{Operation: op, Duration: g.timeout.String()}
			}
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", &agerrors.EmptyResponseError{Operation: op}
		}
		return text, nil
	})

	g.metrics.RecordGeneration(ctx, op, res.Duration, res.Err)
	g.spans.AddSpanEvent(ctx, "completed",
		attribute.Int("attempts", res.Attempts),
		attribute.Int("response_bytes", len(res.Value)),
	)
	g.spans.EndSpanWithError(span, res.Err)

	durationMs := float64(res.Duration.Milliseconds())
	if res.Err != nil {
		observability.LogGenerationError(g.logger, op, res.Err, durationMs, res.Attempts)
		return "", res.Attempts, res.Duration, res.Err
	}
	observability.LogGenerationComplete(g.logger, op, durationMs, res.Attempts)
	return res.Value, res.Attempts, res.Duration, nil
}
