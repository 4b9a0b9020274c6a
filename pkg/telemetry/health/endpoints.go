package health

import (
	"net/http"

	"simpleapp/itemsvc/pkg/api"
	"simpleapp/itemsvc/pkg/config"
)

// LivenessHandler answers {"status": "alive"} while the process runs.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	}
}

// ReadinessHandler answers {"status": "ready"} when every readiness check
// passes, and 503 otherwise.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.Ready(r.Context()); err != nil {
			c.logger.Error(r.Context(), "Readiness check failed: "+err.Error(), nil)
			api.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "Service not ready"})
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// HealthHandler answers the aggregate Report, with 503 when unhealthy.
//
// Example response:
//
//	{
//	    "status": "healthy",
//	    "version": "0.1.0",
//	    "timestamp": "2026-01-10T10:30:00Z",
//	    "uptime_seconds": 42.5,
//	    "dependencies": [
//	        {"name": "database", "status": "healthy", "response_time_ms": 0.4, "last_checked": "2026-01-10T10:30:00Z"}
//	    ]
//	}
func (c *Checker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Check(r.Context())

		status := http.StatusOK
		if report.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		api.WriteJSON(w, status, report)
	}
}

// Register adds the health endpoints to mux at the configured paths.
func (c *Checker) Register(mux *http.ServeMux, cfg config.HealthConfig) {
	mux.HandleFunc("GET "+cfg.LivenessPath, c.LivenessHandler())
	mux.HandleFunc("GET "+cfg.ReadinessPath, c.ReadinessHandler())
	mux.HandleFunc("GET "+cfg.HealthPath, c.HealthHandler())
}
