package logger

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewTracerProvider samples every request, or follows the caller's sampling
// decision, so request logs carry trace ids. No exporter is attached.
func NewTracerProvider(service string) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", service))),
	)
}

// Propagator reads and writes W3C traceparent and baggage headers.
func Propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}

// SetupTracing installs the tracer provider and propagator globally. Callers
// shut the provider down on exit.
func SetupTracing(service string) *sdktrace.TracerProvider {
	tp := NewTracerProvider(service)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(Propagator())
	return tp
}
