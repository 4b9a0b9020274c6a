// Package health provides the service's health endpoints.
//
// Three probes are served:
//
//   - /health/live: liveness, always {"status": "alive"}
//   - /health/ready: readiness, {"status": "ready"} when every check
//     registered with ForReadiness passes, 503 otherwise
//   - /health: the aggregate Report with one entry per dependency,
//     503 when any dependency is unhealthy
//
// Dependencies register a CheckFunc. A check returning an error wrapped
// with Degraded lowers the overall status to degraded without failing it:
//
//	checker := health.New(cfg.Telemetry.Health, version, logger)
//	checker.RegisterCheck("database", store.Ping, health.ForReadiness())
//	checker.RegisterCheck("cache", func(ctx context.Context) error {
//	    if err := cache.Ping(); err != nil {
//	        return health.Degraded(err)
//	    }
//	    return nil
//	})
//	checker.Register(mux, cfg.Telemetry.Health)
//
// The probes sit under the request tracing skip list, so polling them
// creates no spans or request metrics.
package health
