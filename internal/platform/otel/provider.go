// Package otel wires OpenTelemetry tracing for command runs.
package otel

import (
	"context"

	"github.com/louisbranch/dnaforge/internal/platform/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Settings controls trace export. Both fields come from the environment.
type Settings struct {
	Endpoint string `env:"OTEL_ENDPOINT"`
	Enabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

// Setup initialises OpenTelemetry tracing for the given service.
//
// Tracing is opt-in: when DNAFORGE_OTEL_ENDPOINT is empty or
// DNAFORGE_OTEL_ENABLED is false, Setup returns a no-op shutdown function and
// no global provider is registered, so spans started by the generator are
// discarded.
//
// The returned shutdown function flushes pending spans and should be deferred
// by the caller.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	var settings Settings
	if err := config.ParseEnv(&settings); err != nil {
		return noop, err
	}
	if !settings.Enabled || settings.Endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(settings.Endpoint))
	if err != nil {
		return noop, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}
