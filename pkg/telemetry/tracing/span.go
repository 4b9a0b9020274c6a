package tracing

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/trace"
)

// Current returns the span current in ctx. Without one it returns a
// non-recording span, so callers never need a nil check.
func Current(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// HasCurrent reports whether ctx carries a recording span.
func HasCurrent(ctx context.Context) bool {
	return trace.SpanFromContext(ctx).IsRecording()
}

// Scope is a started span that ends exactly once.
//
// The span is current only in the context returned alongside the Scope. The
// caller's context keeps its own current span, so nothing needs restoring
// when the scope ends, whichever way the enclosed code exits.
type Scope struct {
	span trace.Span
	once sync.Once
}

// StartScope starts a child of the span current in ctx, with fields as
// attributes, and returns the context in which it is current.
//
//	ctx, scope := tracer.StartScope(ctx, "items.load", map[string]any{"item_id": id})
//	defer scope.End()
func (t *Tracer) StartScope(ctx context.Context, name string, fields map[string]any) (context.Context, *Scope) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(Attributes(fields)...))
	return ctx, &Scope{span: span}
}

// Span returns the scoped span.
func (s *Scope) Span() trace.Span {
	return s.span
}

// End ends the span. Calls after the first have no effect.
func (s *Scope) End() {
	s.EndWith(nil)
}

// EndWith ends the span, recording err and an Error status when err is not
// nil. Calls after the first have no effect.
func (s *Scope) EndWith(err error) {
	s.once.Do(func() {
		if err != nil {
			RecordError(s.span, err)
		}
		s.span.End()
	})
}

// WithSpan runs fn with a new child span current in its context.
//
// The span ends on every exit path. A returned error, including a
// cancellation error, is recorded with an Error status and returned as-is.
// A panic is recorded the same way and then re-raised with its original
// value.
func (t *Tracer) WithSpan(ctx context.Context, name string, fields map[string]any, fn func(context.Context) error) (err error) {
	ctx, scope := t.StartScope(ctx, name, fields)
	defer func() {
		if r := recover(); r != nil {
			scope.EndWith(RecoveredError(r))
			panic(r)
		}
		scope.EndWith(err)
	}()

	return fn(ctx)
}

// PanicError wraps a recovered panic value that is not an error.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// RecoveredError converts a recovered panic value to an error. Errors are
// returned unchanged.
func RecoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &PanicError{Value: r}
}
