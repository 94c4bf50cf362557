// Package observability wires OpenTelemetry tracing and metrics into the
// provisioning layer. The provider is a no-op unless explicitly enabled,
// so library users pay nothing for it by default.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// TelemetryConfig configures tracing and metrics export.
type TelemetryConfig struct {
	ServiceName    string            `json:"service_name"`
	ServiceVersion string            `json:"service_version"`
	Environment    string            `json:"environment"`
	OTLPEndpoint   string            `json:"otlp_endpoint"`
	OTLPHeaders    map[string]string `json:"otlp_headers,omitempty"`
	TracingEnabled bool              `json:"tracing_enabled"`
	MetricsEnabled bool              `json:"metrics_enabled"`
	SampleRate     float64           `json:"sample_rate"`
	Enabled        bool              `json:"enabled"`
}

// DefaultTelemetryConfig returns a disabled telemetry configuration with
// sensible export defaults.
func DefaultTelemetryConfig() *TelemetryConfig {
	return &TelemetryConfig{
		ServiceName:    "onboardhub",
		ServiceVersion: "1.0.0",
		Environment:    "development",
		OTLPEndpoint:   "localhost:4318",
		TracingEnabled: true,
		MetricsEnabled: true,
		SampleRate:     1.0,
		Enabled:        false,
	}
}

// TelemetryProvider provides observability features for provisioning
// operations.
type TelemetryProvider struct {
	config        *TelemetryConfig
	tracer        trace.Tracer
	meter         metric.Meter
	traceProvider *sdktrace.TracerProvider

	// Metrics
	provisionsTotal    metric.Int64Counter
	provisionsFailed   metric.Int64Counter
	provisionDuration  metric.Float64Histogram
	initializedModules metric.Int64UpDownCounter
}

// NewTelemetryProvider creates a new telemetry provider.
func NewTelemetryProvider(cfg *TelemetryConfig) (*TelemetryProvider, error) {
	if cfg == nil {
		cfg = DefaultTelemetryConfig()
	}

	tp := &TelemetryProvider{
		config: cfg,
	}

	if !cfg.Enabled {
		// Return no-op provider
		tp.tracer = otel.Tracer("onboardhub")
		tp.meter = otel.Meter("onboardhub")
		return tp, nil
	}

	if cfg.TracingEnabled {
		if err := tp.initTracing(); err != nil {
			return nil, fmt.Errorf("init tracing: %v", err)
		}
	}

	if cfg.MetricsEnabled {
		if err := tp.initMetrics(); err != nil {
			return nil, fmt.Errorf("init metrics: %v", err)
		}
	}

	return tp, nil
}

// initTracing initializes OpenTelemetry tracing.
func (tp *TelemetryProvider) initTracing() error {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(tp.config.ServiceName),
			semconv.ServiceVersion(tp.config.ServiceVersion),
			semconv.DeploymentEnvironment(tp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("create resource: %v", err)
	}

	exporter, err := otlptrace.New(context.Background(),
		otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(tp.config.OTLPEndpoint),
			otlptracehttp.WithHeaders(tp.config.OTLPHeaders),
		),
	)
	if err != nil {
		return fmt.Errorf("create exporter: %v", err)
	}

	tp.traceProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(tp.config.SampleRate)),
	)

	otel.SetTracerProvider(tp.traceProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	tp.tracer = otel.Tracer("onboardhub",
		trace.WithInstrumentationVersion("1.0.0"),
		trace.WithSchemaURL(semconv.SchemaURL),
	)

	return nil
}

// initMetrics initializes OpenTelemetry metrics.
func (tp *TelemetryProvider) initMetrics() error {
	tp.meter = otel.Meter("onboardhub",
		metric.WithInstrumentationVersion("1.0.0"),
		metric.WithSchemaURL(semconv.SchemaURL),
	)

	var err error

	tp.provisionsTotal, err = tp.meter.Int64Counter(
		"onboardhub_provisions_total",
		metric.WithDescription("Total number of provisioning operations"),
	)
	if err != nil {
		return fmt.Errorf("create provisions_total counter: %v", err)
	}

	tp.provisionsFailed, err = tp.meter.Int64Counter(
		"onboardhub_provisions_failed_total",
		metric.WithDescription("Total number of failed provisioning operations"),
	)
	if err != nil {
		return fmt.Errorf("create provisions_failed counter: %v", err)
	}

	tp.provisionDuration, err = tp.meter.Float64Histogram(
		"onboardhub_provision_duration_seconds",
		metric.WithDescription("Duration of provisioning operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("create provision_duration histogram: %v", err)
	}

	tp.initializedModules, err = tp.meter.Int64UpDownCounter(
		"onboardhub_initialized_modules",
		metric.WithDescription("Number of currently initialized platform modules"),
	)
	if err != nil {
		return fmt.Errorf("create initialized_modules counter: %v", err)
	}

	return nil
}

// TraceOperation creates a new span for an operation.
func (tp *TelemetryProvider) TraceOperation(ctx context.Context, operationName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	if tp.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	return tp.tracer.Start(ctx, operationName,
		trace.WithAttributes(attributes...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// TracePlatformOperation creates a span for one platform operation.
func (tp *TelemetryProvider) TracePlatformOperation(ctx context.Context, platform, operation string) (context.Context, trace.Span) {
	attributes := []attribute.KeyValue{
		attribute.String("onboardhub.platform", platform),
		attribute.String("onboardhub.operation", operation),
	}

	return tp.TraceOperation(ctx, "onboardhub."+operation, attributes...)
}

// RecordProvisionSuccess records a successful provisioning operation.
func (tp *TelemetryProvider) RecordProvisionSuccess(ctx context.Context, platform, operation string, duration time.Duration) {
	if tp.provisionsTotal != nil {
		tp.provisionsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("platform", platform),
			attribute.String("operation", operation),
			attribute.String("status", "success"),
		))
	}

	if tp.provisionDuration != nil {
		tp.provisionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
			attribute.String("platform", platform),
			attribute.String("operation", operation),
			attribute.String("status", "success"),
		))
	}
}

// RecordProvisionFailure records a failed provisioning operation.
func (tp *TelemetryProvider) RecordProvisionFailure(ctx context.Context, platform, operation string, duration time.Duration, errorCode string) {
	if tp.provisionsTotal != nil {
		tp.provisionsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("platform", platform),
			attribute.String("operation", operation),
			attribute.String("status", "error"),
		))
	}

	if tp.provisionsFailed != nil {
		tp.provisionsFailed.Add(ctx, 1, metric.WithAttributes(
			attribute.String("platform", platform),
			attribute.String("operation", operation),
			attribute.String("error_code", errorCode),
		))
	}

	if tp.provisionDuration != nil {
		tp.provisionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
			attribute.String("platform", platform),
			attribute.String("operation", operation),
			attribute.String("status", "error"),
		))
	}
}

// UpdateInitializedModules adjusts the initialized-module gauge.
func (tp *TelemetryProvider) UpdateInitializedModules(ctx context.Context, delta int64) {
	if tp.initializedModules != nil {
		tp.initializedModules.Add(ctx, delta)
	}
}

// SetSpanError sets an error on the span.
func (tp *TelemetryProvider) SetSpanError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks the span as successful.
func (tp *TelemetryProvider) SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// Shutdown gracefully shuts down the telemetry provider.
func (tp *TelemetryProvider) Shutdown(ctx context.Context) error {
	if tp.traceProvider != nil {
		return tp.traceProvider.Shutdown(ctx)
	}
	return nil
}

// GetTracer returns the tracer instance.
func (tp *TelemetryProvider) GetTracer() trace.Tracer {
	return tp.tracer
}

// GetMeter returns the meter instance.
func (tp *TelemetryProvider) GetMeter() metric.Meter {
	return tp.meter
}
