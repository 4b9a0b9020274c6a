package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"simpleapp/itemsvc/internal/telemetrytest"
	"simpleapp/itemsvc/pkg/config"
)

func healthy(context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func degraded(msg string) CheckFunc {
	return func(context.Context) error { return Degraded(errors.New(msg)) }
}

func newTestChecker(t *testing.T) (*Checker, *telemetrytest.LogBuffer) {
	t.Helper()
	logger, logs := telemetrytest.NewLogger(t, config.EnvironmentTesting, nil)
	return New(config.HealthConfig{CheckTimeout: time.Second}, "1.2.3", logger), logs
}

func TestNew(t *testing.T) {
	logger, _ := telemetrytest.NewLogger(t, config.EnvironmentTesting, nil)

	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"default timeout", 0, config.DefaultCheckTimeout},
		{"negative timeout", -time.Second, config.DefaultCheckTimeout},
		{"custom timeout", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(config.HealthConfig{CheckTimeout: tt.timeout}, "v", logger)
			if checker.checkTimeout != tt.want {
				t.Errorf("checkTimeout = %v, want %v", checker.checkTimeout, tt.want)
			}
			if checker.CheckCount() != 0 {
				t.Errorf("CheckCount() = %d, want 0", checker.CheckCount())
			}
		})
	}
}

func TestRegisterCheck_ReplaceKeepsOrder(t *testing.T) {
	checker, _ := newTestChecker(t)
	checker.RegisterCheck("database", healthy)
	checker.RegisterCheck("cache", healthy)
	checker.RegisterCheck("database", failing("down"))

	if checker.CheckCount() != 2 {
		t.Fatalf("CheckCount() = %d, want 2", checker.CheckCount())
	}

	report := checker.Check(context.Background())
	if report.Dependencies[0].Name != "database" || report.Dependencies[1].Name != "cache" {
		t.Errorf("dependency order = %+v", report.Dependencies)
	}
	if report.Dependencies[0].Status != StatusUnhealthy {
		t.Errorf("replaced check not used: %+v", report.Dependencies[0])
	}
}

func TestCheck_Aggregation(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		want   string
	}{
		{name: "no checks", want: StatusHealthy},
		{name: "all healthy", checks: map[string]CheckFunc{"a": healthy, "b": healthy}, want: StatusHealthy},
		{name: "one degraded", checks: map[string]CheckFunc{"a": healthy, "b": degraded("slow")}, want: StatusDegraded},
		{name: "one unhealthy", checks: map[string]CheckFunc{"a": failing("down"), "b": healthy}, want: StatusUnhealthy},
		{name: "unhealthy wins", checks: map[string]CheckFunc{"a": degraded("slow"), "b": failing("down")}, want: StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker, _ := newTestChecker(t)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			report := checker.Check(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %q, want %q", report.Status, tt.want)
			}
			if len(report.Dependencies) != len(tt.checks) {
				t.Errorf("got %d dependencies, want %d", len(report.Dependencies), len(tt.checks))
			}
			if report.Version != "1.2.3" {
				t.Errorf("Version = %q", report.Version)
			}
		})
	}
}

func TestCheck_DependencyFields(t *testing.T) {
	checker, logs := newTestChecker(t)
	checker.RegisterCheck("database", failing("connection refused"))
	checker.RegisterCheck("cache", degraded("probe rejected"))

	report := checker.Check(context.Background())

	db := report.Dependencies[0]
	if db.Status != StatusUnhealthy || db.Error != "connection refused" {
		t.Errorf("database = %+v", db)
	}
	if db.LastChecked.IsZero() || db.ResponseTimeMS < 0 {
		t.Errorf("database timing = %+v", db)
	}

	cache := report.Dependencies[1]
	if cache.Status != StatusDegraded || cache.Error != "degraded: probe rejected" {
		t.Errorf("cache = %+v", cache)
	}

	errs := logs.RecordsAt(t, "ERROR")
	if len(errs) != 1 || errs[0].Message() != "database health check failed: connection refused" {
		t.Errorf("error records = %+v", errs)
	}
	if len(logs.RecordsAt(t, "WARN")) != 1 {
		t.Error("degraded dependency was not logged as a warning")
	}
}

func TestCheck_Timeout(t *testing.T) {
	logger, _ := telemetrytest.NewLogger(t, config.EnvironmentTesting, nil)
	checker := New(config.HealthConfig{CheckTimeout: 20 * time.Millisecond}, "v", logger)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	report := checker.Check(context.Background())
	dep := report.Dependencies[0]
	if dep.Status != StatusUnhealthy || dep.Error != ErrCheckTimeout.Error() {
		t.Errorf("slow = %+v", dep)
	}
}

func TestCheck_Uptime(t *testing.T) {
	checker, _ := newTestChecker(t)
	clock := telemetrytest.NewClock()
	checker.now = clock.Now
	checker.started = clock.Now()

	clock.Advance(90 * time.Second)
	report := checker.Check(context.Background())

	if report.UptimeSeconds != 90 {
		t.Errorf("UptimeSeconds = %v, want 90", report.UptimeSeconds)
	}
	if !report.Timestamp.Equal(clock.Now()) {
		t.Errorf("Timestamp = %v, want %v", report.Timestamp, clock.Now())
	}
}

func TestReady(t *testing.T) {
	checker, _ := newTestChecker(t)
	checker.RegisterCheck("cache", failing("ignored"))
	if err := checker.Ready(context.Background()); err != nil {
		t.Fatalf("Ready() with no readiness checks = %v", err)
	}

	checker.RegisterCheck("database", failing("locked"), ForReadiness())
	err := checker.Ready(context.Background())
	if err == nil || err.Error() != "database: locked" {
		t.Errorf("Ready() = %v, want database: locked", err)
	}
}

func serve(t *testing.T, checker *Checker, path string) (int, map[string]any) {
	t.Helper()
	mux := http.NewServeMux()
	checker.Register(mux, config.HealthConfig{
		LivenessPath:  config.DefaultLivenessPath,
		ReadinessPath: config.DefaultReadinessPath,
		HealthPath:    config.DefaultHealthPath,
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return rec.Code, body
}

func TestHandlers(t *testing.T) {
	tests := []struct {
		name       string
		database   CheckFunc
		path       string
		wantCode   int
		wantStatus any
	}{
		{"liveness", failing("down"), "/health/live", http.StatusOK, "alive"},
		{"ready", healthy, "/health/ready", http.StatusOK, "ready"},
		{"not ready", failing("down"), "/health/ready", http.StatusServiceUnavailable, nil},
		{"healthy", healthy, "/health", http.StatusOK, StatusHealthy},
		{"unhealthy", failing("down"), "/health", http.StatusServiceUnavailable, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker, _ := newTestChecker(t)
			checker.RegisterCheck("database", tt.database, ForReadiness())
			checker.RegisterCheck("cache", healthy)

			code, body := serve(t, checker, tt.path)
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			if body["status"] != tt.wantStatus {
				t.Errorf("status = %v, want %v", body["status"], tt.wantStatus)
			}
		})
	}
}

func TestHealthHandler_DegradedIsOK(t *testing.T) {
	checker, _ := newTestChecker(t)
	checker.RegisterCheck("cache", degraded("probe rejected"))

	code, body := serve(t, checker, "/health")
	if code != http.StatusOK || body["status"] != StatusDegraded {
		t.Errorf("got %d %v", code, body)
	}
	deps, _ := body["dependencies"].([]any)
	if len(deps) != 1 {
		t.Fatalf("dependencies = %v", body["dependencies"])
	}
	dep := deps[0].(map[string]any)
	for _, key := range []string{"name", "status", "response_time_ms", "last_checked", "error"} {
		if _, ok := dep[key]; !ok {
			t.Errorf("dependency missing %q: %v", key, dep)
		}
	}
}

func TestReadinessHandler_NotReadyBody(t *testing.T) {
	checker, logs := newTestChecker(t)
	checker.RegisterCheck("database", failing("down"), ForReadiness())

	_, body := serve(t, checker, "/health/ready")
	if body["detail"] != "Service not ready" {
		t.Errorf("body = %v", body)
	}
	if len(logs.RecordsAt(t, "ERROR")) != 1 {
		t.Error("readiness failure was not logged")
	}
}

func BenchmarkCheck(b *testing.B) {
	logger, _ := telemetrytest.NewLogger(b, config.EnvironmentTesting, nil)
	checker := New(config.HealthConfig{}, "v", logger)
	checker.RegisterCheck("database", healthy, ForReadiness())
	checker.RegisterCheck("cache", healthy)

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = checker.Check(ctx)
	}
}
