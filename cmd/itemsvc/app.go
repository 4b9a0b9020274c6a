package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"simpleapp/itemsvc/pkg/config"
	"simpleapp/itemsvc/pkg/items"
	"simpleapp/itemsvc/pkg/server"
	"simpleapp/itemsvc/pkg/telemetry/health"
	"simpleapp/itemsvc/pkg/telemetry/logging"
	"simpleapp/itemsvc/pkg/telemetry/metrics"
	"simpleapp/itemsvc/pkg/telemetry/performance"
	"simpleapp/itemsvc/pkg/telemetry/tracing"
)

// app holds the assembled service components.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	tracer  *tracing.Tracer
	metrics *metrics.Collector
	store   *items.SQLiteStore
	cache   *items.Cache
	server  *server.Server
}

// newApp builds every component from cfg. Logs go to out.
func newApp(ctx context.Context, cfg *config.Config, out io.Writer) (*app, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, registry)

	logger, err := newLogger(cfg, collector, out)
	if err != nil {
		return nil, err
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, cfg.App.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, tracer: tracer, metrics: collector}

	a.store, err = items.OpenSQLite(ctx, cfg.Database, logger)
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("failed to open item store: %w", err)
	}
	logger.Info(ctx, "Database connection established", map[string]any{"path": cfg.Database.Path})

	a.cache, err = items.NewCache(cfg.Cache, collector)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	if a.cache != nil {
		if err := a.cache.Ping(); err != nil {
			logger.Warning(ctx, fmt.Sprintf("Item cache failed: %v. Caching will be bypassed.", err), nil)
			a.cache.Close()
			a.cache = nil
		} else {
			logger.Info(ctx, "Item cache ready", map[string]any{"ttl_seconds": cfg.Cache.TTL.Seconds()})
		}
	}

	checker := health.New(cfg.Telemetry.Health, cfg.Telemetry.Tracing.ServiceVersion, logger)
	checker.RegisterCheck("database", a.store.Ping, health.ForReadiness())
	if a.cache != nil {
		cache := a.cache
		checker.RegisterCheck("cache", func(context.Context) error {
			if err := cache.Ping(); err != nil {
				return health.Degraded(err)
			}
			return nil
		})
	}

	guard := performance.NewGuard(tracer, logger, cfg.Instrumentation.FunctionThreshold,
		performance.WithRecorder(collector))
	service := items.NewService(a.store, a.cache, guard, logger, cfg.Instrumentation.ServiceThreshold)

	a.server = server.New(cfg, server.Deps{
		Logger:  logger,
		Tracer:  tracer,
		Metrics: collector,
		Health:  checker,
		Items:   service,
	})
	return a, nil
}

func newLogger(cfg *config.Config, recorder logging.ExceptionRecorder, out io.Writer) (*logging.Logger, error) {
	logCfg := logging.Config{
		Level:       cfg.Telemetry.Logging.Level,
		Format:      cfg.Telemetry.Logging.Format,
		AddSource:   cfg.Telemetry.Logging.AddSource,
		Environment: cfg.App.Environment,
		Recorder:    recorder,
		Writer:      out,
	}
	if len(cfg.Telemetry.Logging.SensitiveFields) > 0 {
		policy := logging.DefaultPolicy()
		policy.Fragments = cfg.Telemetry.Logging.SensitiveFields
		logCfg.Policy = &policy
	}

	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return logger, nil
}

// close releases the components in reverse order of creation.
func (a *app) close(ctx context.Context) error {
	var errs []error

	a.cache.Close()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing item store: %w", err))
		}
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down tracer: %w", err))
	}
	return errors.Join(errs...)
}
