// Package server wires the item service's HTTP surface together.
//
// The mux carries the item API under /api/v1/item, the health probes and
// the Prometheus endpoint. Every request passes through, outermost first:
//
//	Recovery -> Tracing -> CORS -> mux
//
// Recovery turns a panic that escaped the handlers into a 500 envelope.
// Tracing opens the request span, stamps X-Process-Time and feeds the
// request metrics; the health and metrics paths are on its skip list.
//
// # Usage
//
//	srv := server.New(cfg, server.Deps{
//	    Logger:  logger,
//	    Tracer:  tracer,
//	    Metrics: collector,
//	    Health:  checker,
//	    Items:   service,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is done and then shuts down gracefully, bounded
// by Server.ShutdownTimeout.
package server
