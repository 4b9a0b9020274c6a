package performance

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"simpleapp/itemsvc/pkg/config"
	"simpleapp/itemsvc/pkg/telemetry/logging"
	"simpleapp/itemsvc/pkg/telemetry/tracing"
)

// Slow operation kinds reported to a SlowRecorder.
const (
	KindFunction   = "function"
	KindCheckpoint = "checkpoint"
)

// SlowRecorder counts operations that exceeded their threshold.
// *metrics.Collector implements it.
type SlowRecorder interface {
	RecordSlowOperation(kind, name string)
}

// Guard times units of work under their own span and warns when one runs
// longer than its threshold. A Guard is safe for concurrent use.
type Guard struct {
	tracer    *tracing.Tracer
	logger    *logging.Logger
	threshold time.Duration
	recorder  SlowRecorder
	now       func() time.Time
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithRecorder reports slow operations to r.
func WithRecorder(r SlowRecorder) GuardOption {
	return func(g *Guard) {
		g.recorder = r
	}
}

// NewGuard creates a guard. A threshold of zero or less uses the default
// function threshold.
func NewGuard(tracer *tracing.Tracer, logger *logging.Logger, threshold time.Duration, opts ...GuardOption) *Guard {
	if threshold <= 0 {
		threshold = config.DefaultFunctionThreshold
	}
	g := &Guard{
		tracer:    tracer,
		logger:    logger,
		threshold: threshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Threshold returns the guard's default threshold.
func (g *Guard) Threshold() time.Duration {
	return g.threshold
}

// Option overrides guard settings for a single call.
type Option func(*callOptions)

type callOptions struct {
	threshold time.Duration
	fields    map[string]any
}

// WithThreshold overrides the slow threshold for one call.
func WithThreshold(d time.Duration) Option {
	return func(o *callOptions) {
		if d > 0 {
			o.threshold = d
		}
	}
}

// WithFields adds initial span attributes.
func WithFields(fields map[string]any) Option {
	return func(o *callOptions) {
		o.fields = fields
	}
}

func (g *Guard) options(opts []Option) callOptions {
	o := callOptions{threshold: g.threshold}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Run executes fn under a span named "{qualifier}.{operation}".
//
// The span always gets function.duration_ms. An error from fn is recorded
// on the span and returned unchanged; a panic is recorded and re-raised.
//
//	item, err := performance.Run(ctx, guard, "items.Service", "Get", func(ctx context.Context) (*Item, error) {
//		return store.Get(ctx, id)
//	})
func Run[T any](ctx context.Context, g *Guard, qualifier, operation string, fn func(context.Context) (T, error), opts ...Option) (result T, err error) {
	return run(ctx, g, qualifier, operation, "slow function", fn, g.options(opts))
}

// Wrap returns fn guarded like Run, for use where a plain function value is
// expected.
func Wrap[T any](g *Guard, qualifier, operation string, fn func(context.Context) (T, error), opts ...Option) func(context.Context) (T, error) {
	o := g.options(opts)
	return func(ctx context.Context) (T, error) {
		return run(ctx, g, qualifier, operation, "slow function", fn, o)
	}
}

func run[T any](ctx context.Context, g *Guard, qualifier, operation, label string, fn func(context.Context) (T, error), o callOptions) (result T, err error) {
	ctx, scope := g.tracer.StartScope(ctx, qualifier+"."+operation, o.fields)
	start := g.now()

	defer func() {
		r := recover()

		elapsed := g.now().Sub(start)
		scope.Span().SetAttributes(attribute.Float64(tracing.AttrFunctionDuration, milliseconds(elapsed)))
		if elapsed > o.threshold {
			g.reportSlow(ctx, label, qualifier, operation, elapsed)
		}

		if r != nil {
			scope.EndWith(tracing.RecoveredError(r))
			panic(r)
		}
		scope.EndWith(err)
	}()

	return fn(ctx)
}

func (g *Guard) reportSlow(ctx context.Context, label, qualifier, operation string, elapsed time.Duration) {
	ms := milliseconds(elapsed)
	g.logger.Warning(ctx, fmt.Sprintf("%s: %s took %.2fms", label, operation, ms), map[string]any{
		"function":   operation,
		"module":     qualifier,
		"elapsed_ms": ms,
	})
	if g.recorder != nil {
		g.recorder.RecordSlowOperation(KindFunction, qualifier+"."+operation)
	}
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
