package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records agentgraph metrics.
// Use NewMetricsRecorder for OpenTelemetry or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordRepair records one repair pass and the references it dropped.
	RecordRepair(ctx context.Context, nodes int, prunedRefs int)

	// RecordGeneration records a collaborator call ("workflow" or "sop").
	RecordGeneration(ctx context.Context, op string, duration time.Duration, err error)

	// RecordViewRender records one rendered view.
	RecordViewRender(ctx context.Context, format string)
}

type otelMetrics struct {
	repairRuns      metric.Int64Counter
	repairPruned    metric.Int64Counter
	generateCalls   metric.Int64Counter
	generateErrors  metric.Int64Counter
	generateLatency metric.Float64Histogram
	viewRenders     metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("agentgraph")

	repairRuns, err := meter.Int64Counter("agentgraph.repair.runs",
		metric.WithDescription("Number of repair passes"),
	)
	if err != nil {
		return nil, err
	}

	repairPruned, err := meter.Int64Counter("agentgraph.repair.pruned_refs",
		metric.WithDescription("Dangling next references dropped by repair"),
	)
	if err != nil {
		return nil, err
	}

	generateCalls, err := meter.Int64Counter("agentgraph.generate.calls",
		metric.WithDescription("Number of generation collaborator calls"),
	)
	if err != nil {
		return nil, err
	}

	generateErrors, err := meter.Int64Counter("agentgraph.generate.errors",
		metric.WithDescription("Number of failed generation collaborator calls"),
	)
	if err != nil {
		return nil, err
	}

	generateLatency, err := meter.Float64Histogram("agentgraph.generate.latency_ms",
		metric.WithDescription("Generation collaborator latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	viewRenders, err := meter.Int64Counter("agentgraph.view.renders",
		metric.WithDescription("Number of rendered views"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		repairRuns:      repairRuns,
		repairPruned:    repairPruned,
		generateCalls:   generateCalls,
		generateErrors:  generateErrors,
		generateLatency: generateLatency,
		viewRenders:     viewRenders,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder backed by the global OTel
// meter provider, or NoopMetrics if instrument creation fails.
//
// Configure the provider first:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordRepair(ctx context.Context, nodes int, prunedRefs int) {
	attrs := metric.WithAttributes(attribute.Int("nodes", nodes))
	m.repairRuns.Add(ctx, 1, attrs)
	if prunedRefs > 0 {
		m.repairPruned.Add(ctx, int64(prunedRefs), attrs)
	}
}

func (m *otelMetrics) RecordGeneration(ctx context.Context, op string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("op", op))
	m.generateCalls.Add(ctx, 1, attrs)
	m.generateLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		m.generateErrors.Add(ctx, 1, attrs)
	}
}

func (m *otelMetrics) RecordViewRender(ctx context.Context, format string) {
	m.viewRenders.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}
