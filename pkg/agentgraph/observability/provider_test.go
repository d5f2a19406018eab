package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

func TestInstallProviders(t *testing.T) {
	origMeter, origTracer := otel.GetMeterProvider(), otel.GetTracerProvider()
	t.Cleanup(func() {
		otel.SetMeterProvider(origMeter)
		otel.SetTracerProvider(origTracer)
	})

	var buf bytes.Buffer
	p := InstallProviders(newJSONLogger(&buf))
	assert.Same(t, p.meter, otel.GetMeterProvider())
	assert.Same(t, p.tracer, otel.GetTracerProvider())

	ctx := context.Background()
	meter := p.meter.Meter("test")
	counter, err := meter.Int64Counter("agentgraph.test.count")
	require.NoError(t, err)
	counter.Add(ctx, 2)
	counter.Add(ctx, 3)
	hist, err := meter.Float64Histogram("agentgraph.test.latency_ms")
	require.NoError(t, err)
	hist.Record(ctx, 12.5)

	totals, err := p.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5.0, totals["agentgraph.test.count"])
	assert.Equal(t, 1.0, totals["agentgraph.test.latency_ms"])

	_, span := p.tracer.Tracer("test").Start(ctx, "agentgraph.generate.workflow")
	span.SetAttributes(attribute.String("generate.lang", "en"))
	span.End()

	require.NoError(t, p.Shutdown(ctx))

	var sawSpan, sawTotal bool
	for _, line := range decodeLines(t, &buf) {
		switch line["msg"] {
		case "span finished":
			sawSpan = true
			assert.Equal(t, "agentgraph.generate.workflow", line["span"])
			assert.Equal(t, "en", line["generate.lang"])
		case "metric total":
			if line["metric"] == "agentgraph.test.count" {
				sawTotal = true
				assert.Equal(t, 5.0, line["value"])
			}
		}
	}
	assert.True(t, sawSpan, "finished span is logged")
	assert.True(t, sawTotal, "metric totals are logged at shutdown")
}
