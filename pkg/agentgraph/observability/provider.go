package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Providers are in-process OTel SDK providers that report through slog:
// finished spans are logged at debug level and metric totals are logged
// when Shutdown runs. Use them when no collector is available.
type Providers struct {
	logger *slog.Logger
	reader *sdkmetric.ManualReader
	meter  *sdkmetric.MeterProvider
	tracer *sdktrace.TracerProvider
}

// InstallProviders creates Providers and sets them as the global OTel
// meter and tracer providers.
func InstallProviders(logger *slog.Logger) *Providers {
	if logger == nil {
		logger = slog.Default()
	}
	reader := sdkmetric.NewManualReader()
	p := &Providers{
		logger: logger,
		reader: reader,
		meter:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		tracer: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanLogger{logger: logger})),
	}
	otel.SetMeterProvider(p.meter)
	otel.SetTracerProvider(p.tracer)
	return p
}

// Collect returns the current metric totals keyed by instrument name.
// Counters report their sum, histograms their observation count.
func (p *Providers) Collect(ctx context.Context) (map[string]float64, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					totals[m.Name] += float64(dp.Value)
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					totals[m.Name] += dp.Value
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					totals[m.Name] += float64(dp.Count)
				}
			}
		}
	}
	return totals, nil
}

// Shutdown logs the metric totals and stops both providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	totals, err := p.Collect(ctx)
	if err == nil {
		for name, v := range totals {
			p.logger.Info("metric total", slog.String("metric", name), slog.Float64("value", v))
		}
	}
	return errors.Join(err, p.meter.Shutdown(ctx), p.tracer.Shutdown(ctx))
}

// spanLogger logs every finished span.
type spanLogger struct {
	logger *slog.Logger
}

func (s spanLogger) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (s spanLogger) OnEnd(span sdktrace.ReadOnlySpan) {
	attrs := []any{
		slog.String("span", span.Name()),
		slog.String("trace_id", span.SpanContext().TraceID().String()),
		slog.Float64("duration_ms", float64(span.EndTime().Sub(span.StartTime()).Microseconds())/1000),
		slog.String("status", span.Status().Code.String()),
	}
	for _, kv := range span.Attributes() {
		attrs = append(attrs, slog.String(string(kv.Key), kv.Value.Emit()))
	}
	s.logger.Debug("span finished", attrs...)
}

func (s spanLogger) Shutdown(context.Context) error   { return nil }
func (s spanLogger) ForceFlush(context.Context) error { return nil }
