package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// decodeLines parses JSON log lines written by slog.NewJSONHandler.
func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func newJSONLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogHelpers_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogRepair(nil, "wf", 1, 1, 0)
		LogIDCollision(nil, "a", "a", "a_2")
		LogPrunedReference(nil, "a", "b")
		LogImportPruned(nil, "e1", errors.New("boom"))
		LogGenerationStart(nil, "workflow", "en")
		LogGenerationComplete(nil, "workflow", 1, 1)
		LogGenerationError(nil, "workflow", errors.New("boom"), 1, 2)
	})
}

func TestLogRepair(t *testing.T) {
	var buf bytes.Buffer
	LogRepair(newJSONLogger(&buf), "support", 4, 3, 1)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "workflow repaired", lines[0]["msg"])
	assert.Equal(t, "DEBUG", lines[0]["level"])
	assert.Equal(t, "support", lines[0]["workflow"])
	assert.EqualValues(t, 4, lines[0]["nodes"])
	assert.EqualValues(t, 3, lines[0]["edges"])
	assert.EqualValues(t, 1, lines[0]["pruned_refs"])
}

func TestLogIDCollision(t *testing.T) {
	var buf bytes.Buffer
	LogIDCollision(newJSONLogger(&buf), "Step 1", "step_1", "step_1_2")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.Equal(t, "step_1_2", lines[0]["assigned"])
}

func TestLogGenerationError(t *testing.T) {
	var buf bytes.Buffer
	LogGenerationError(newJSONLogger(&buf), "sop", errors.New("rate limited"), 12, 3)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "ERROR", lines[0]["level"])
	assert.Equal(t, "sop", lines[0]["op"])
	assert.Equal(t, "rate limited", lines[0]["error"])
	assert.EqualValues(t, 3, lines[0]["attempts"])
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, done(), float64(4))
}

// setupMetricsTest installs a manual-reader meter provider.
func setupMetricsTest(t *testing.T) *sdkmetric.ManualReader {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	original := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	t.Cleanup(func() {
		otel.SetMeterProvider(original)
		_ = provider.Shutdown(context.Background())
	})
	return reader
}

func findMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) *metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64], got %T", m.Data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRecordRepair(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordRepair(ctx, 3, 0)
	m.RecordRepair(ctx, 3, 2)

	assert.Equal(t, int64(2), sumOf(t, findMetric(t, reader, "agentgraph.repair.runs")))
	assert.Equal(t, int64(2), sumOf(t, findMetric(t, reader, "agentgraph.repair.pruned_refs")))
}

func TestRecordGeneration(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordGeneration(ctx, "workflow", 20*time.Millisecond, nil)
	m.RecordGeneration(ctx, "workflow", 30*time.Millisecond, errors.New("boom"))

	assert.Equal(t, int64(2), sumOf(t, findMetric(t, reader, "agentgraph.generate.calls")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(t, reader, "agentgraph.generate.errors")))

	latency := findMetric(t, reader, "agentgraph.generate.latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
}

func TestRecordViewRender(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordViewRender(context.Background(), "mermaid")
	m.RecordViewRender(context.Background(), "markdown")

	assert.Equal(t, int64(2), sumOf(t, findMetric(t, reader, "agentgraph.view.renders")))
}

func TestNewMetricsRecorder(t *testing.T) {
	setupMetricsTest(t)
	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)
	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop)
}

// setupTracingTest installs an in-memory span exporter.
func setupTracingTest(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer("agentgraph")

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return exporter
}

func TestSpanManager_Generate(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	ctx, span := sm.StartGenerateSpan(context.Background(), "workflow", "zh")
	sm.AddSpanEvent(ctx, "response_parsed", attribute.Int("nodes", 3))
	sm.EndSpanWithError(span, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "agentgraph.generate.workflow", s.Name)
	assert.Equal(t, codes.Ok, s.Status.Code)
	assert.Contains(t, s.Attributes, attribute.String("generate.lang", "zh"))
	require.Len(t, s.Events, 1)
	assert.Equal(t, "response_parsed", s.Events[0].Name)
}

func TestSpanManager_Error(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	_, span := sm.StartGenerateSpan(context.Background(), "sop", "en")
	sm.EndSpanWithError(span, errors.New("model unavailable"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "model unavailable", spans[0].Status.Description)
}

func TestNoopImplementations(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		var m MetricsRecorder = NoopMetrics{}
		m.RecordRepair(ctx, 1, 1)
		m.RecordGeneration(ctx, "sop", time.Second, nil)
		m.RecordViewRender(ctx, "json")

		var sm SpanManager = NoopSpanManager{}
		got, span := sm.StartGenerateSpan(ctx, "workflow", "en")
		assert.Equal(t, ctx, got)
		sm.AddSpanEvent(got, "evt")
		sm.EndSpanWithError(span, errors.New("x"))
	})
	assert.NotPanics(t, func() { EndSpanWithError(nil, nil) })
}
