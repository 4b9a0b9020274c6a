// Package telemetry groups the observability layers of the item service.
//
// # Components
//
//   - logging: level-gated JSON records mirrored onto the current span,
//     with sensitive fields masked and an environment-driven exception policy
//   - tracing: the OpenTelemetry tracer, span scopes and W3C propagation
//   - performance: the guard that times functions and the checkpoint tracker
//   - metrics: Prometheus counters and histograms for requests, slow
//     operations, exceptions and the item cache
//   - health: liveness, readiness and aggregate health endpoints
//
// # Usage
//
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing, cfg.App.Environment)
//	defer tracer.Shutdown(ctx)
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	logger, _ := logging.New(logging.Config{
//	    Level:       cfg.Telemetry.Logging.Level,
//	    Environment: cfg.App.Environment,
//	    Recorder:    collector,
//	})
//
//	guard := performance.NewGuard(tracer, logger, 0, performance.WithRecorder(collector))
//	item, err := performance.Run(ctx, guard, "items.Service", "Get", func(ctx context.Context) (*items.Item, error) {
//	    return store.Get(ctx, id)
//	})
//
// A record logged while a span is current is also added to that span as an
// event, so logs and traces of one request line up.
package telemetry
