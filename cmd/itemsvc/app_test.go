package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"simpleapp/itemsvc/pkg/config"
	"simpleapp/itemsvc/pkg/items"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Database.Path = items.MemoryPath
	cfg.Telemetry.Tracing.Enabled = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*app, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	a, err := newApp(context.Background(), cfg, &logs)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(func() { _ = a.close(context.Background()) })
	return a, &logs
}

func TestNewApp_ServesItemsAndHealth(t *testing.T) {
	a, logs := newTestApp(t, testConfig())
	h := a.server.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/item/create-item",
		strings.NewReader(`{"name":"Pen","description":"Blue","price":1}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var report struct {
		Status       string `json:"status"`
		Dependencies []struct {
			Name string `json:"name"`
		} `json:"dependencies"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Status != "healthy" || len(report.Dependencies) != 2 {
		t.Errorf("health report = %+v", report)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics output missing runtime collectors")
	}

	if !strings.Contains(logs.String(), "Database connection established") {
		t.Errorf("startup logs missing database status:\n%s", logs.String())
	}
}

func TestNewApp_CacheDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Enabled = false
	a, _ := newTestApp(t, cfg)

	if a.cache != nil {
		t.Error("cache built while disabled")
	}
}

func TestNewApp_InvalidLogLevel(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.Logging.Level = "loud"

	if _, err := newApp(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Error("newApp() accepted an invalid log level")
	}
}

func TestApplyReload(t *testing.T) {
	a, logs := newTestApp(t, testConfig())
	ctx := context.Background()

	next := testConfig()
	next.Telemetry.Logging.Level = "debug"
	a.applyReload(ctx, next)

	logs.Reset()
	a.logger.Debug(ctx, "visible after reload", nil)
	if !strings.Contains(logs.String(), "visible after reload") {
		t.Error("debug record dropped after switching to debug level")
	}
}
