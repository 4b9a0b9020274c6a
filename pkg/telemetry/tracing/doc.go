// Package tracing provides OpenTelemetry tracing for the item service.
//
// # Overview
//
// Spans are exported over OTLP/gRPC through a batch processor. Every span
// carries the resource attributes service.name, service.version and
// deployment.environment. Sampling is parent-based and otherwise samples
// everything.
//
// # Current Span
//
// The current span lives in context.Context. Each request runs with its own
// context, so concurrent requests never see each other's spans. A span
// started from ctx is a child of the span current in ctx and is current only
// in the derived context:
//
//	err := tracer.WithSpan(ctx, "items.create", nil, func(ctx context.Context) error {
//	    tracing.Current(ctx).SetAttributes(attribute.Int("item_id", 42))
//	    return nil
//	})
//
// WithSpan ends the span whether fn returns, fails or panics, and re-raises
// panics unchanged after recording them.
//
// # Propagation
//
// Extract and Inject carry W3C trace context (traceparent, tracestate) and
// baggage across HTTP boundaries.
package tracing
