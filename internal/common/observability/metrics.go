package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records generation outcomes through an OpenTelemetry meter
// exported on the default Prometheus registry. A zero value is safe to use
// and records nothing.
type Observability struct {
	meterProvider      *metric.MeterProvider
	generations        otelmetric.Int64Counter
	generationDuration otelmetric.Float64Histogram
}

type warner interface {
	Warn(msg string, fields map[string]interface{})
}

func New(serviceName string, log warner) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		if log != nil {
			log.Warn("prometheus exporter unavailable, otel metrics disabled", map[string]interface{}{"error": err})
		}
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	generations, _ := meter.Int64Counter(
		"roadmap.generations",
		otelmetric.WithDescription("Number of roadmap generations by status"),
	)
	generationDuration, _ := meter.Float64Histogram(
		"roadmap.generation.duration",
		otelmetric.WithDescription("Roadmap generation duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:      provider,
		generations:        generations,
		generationDuration: generationDuration,
	}
}

// RecordGeneration records one finished generation attempt.
func (o *Observability) RecordGeneration(ctx context.Context, duration time.Duration, status string) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	if o.generations != nil {
		o.generations.Add(ctx, 1, attrs)
	}
	if o.generationDuration != nil {
		o.generationDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
