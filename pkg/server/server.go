// Package server provides the HTTP server of the item service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"simpleapp/itemsvc/pkg/config"
	"simpleapp/itemsvc/pkg/items"
	"simpleapp/itemsvc/pkg/middleware"
	"simpleapp/itemsvc/pkg/telemetry/health"
	"simpleapp/itemsvc/pkg/telemetry/logging"
	"simpleapp/itemsvc/pkg/telemetry/metrics"
	"simpleapp/itemsvc/pkg/telemetry/tracing"
)

// Deps are the components the server routes requests to.
type Deps struct {
	Logger  *logging.Logger
	Tracer  *tracing.Tracer
	Metrics *metrics.Collector
	Health  *health.Checker
	Items   *items.Service
}

// Server is the HTTP server of the item service.
type Server struct {
	config       *config.Config
	deps         Deps
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server. Nothing listens until Start is called.
func New(cfg *config.Config, deps Deps) *Server {
	return &Server{config: cfg, deps: deps}
}

// Start listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		_ = listener.Close()
		return errors.New("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.deps.Logger.Info(ctx, "starting HTTP server", map[string]any{
			"address": listener.Addr().String(),
		})
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.WithoutCancel(ctx))
	case err, ok := <-errChan:
		s.setRunning(false)
		if !ok {
			return nil
		}
		return err
	}
}

// Shutdown gracefully shuts down the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		httpServer := s.httpServer
		running := s.isRunning
		s.mu.RUnlock()
		if !running || httpServer == nil {
			return
		}

		s.deps.Logger.Info(ctx, "initiating graceful shutdown", map[string]any{
			"timeout": s.config.Server.ShutdownTimeout.String(),
		})

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.deps.Logger.Error(ctx, "error during server shutdown", map[string]any{"error": err.Error()})
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.setRunning(false)
		s.deps.Logger.Info(ctx, "HTTP server stopped", nil)
	})

	return shutdownErr
}

func (s *Server) setRunning(running bool) {
	s.mu.Lock()
	s.isRunning = running
	s.mu.Unlock()
}

// IsRunning returns true if the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	if s.deps.Items != nil {
		items.NewHandler(s.deps.Items, s.deps.Logger).Register(mux, items.DefaultPrefix)
	}
	if s.deps.Health != nil {
		s.deps.Health.Register(mux, s.config.Telemetry.Health)
	}
	if s.deps.Metrics != nil && s.config.Telemetry.Metrics.Enabled {
		mux.Handle("GET "+s.config.Telemetry.Metrics.Path, s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux

	handler = middleware.CORS(&s.config.Server.CORS)(handler)

	var recorder middleware.RequestRecorder
	if s.deps.Metrics != nil {
		recorder = s.deps.Metrics
	}
	handler = middleware.Tracing(s.deps.Tracer, s.deps.Logger, recorder, middleware.TracingConfig{
		SkipPaths:     s.config.Instrumentation.SkipPaths,
		SlowThreshold: s.config.Instrumentation.SlowRequestThreshold,
	})(handler)

	// Recovery (outermost)
	handler = middleware.Recovery(s.deps.Logger)(handler)

	return handler
}
