package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"simpleapp/itemsvc/pkg/config"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:                true,
		Namespace:              "test",
		Subsystem:              "http",
		RequestDurationBuckets: []float64{0.1, 0.5, 1.0, 5.0},
		MaxPathCardinality:     3,
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector.config != cfg {
		t.Error("Collector config not set correctly")
	}
	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_NewCollectorDefaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	collector := NewCollector(cfg, nil)

	if collector.Registry() == nil {
		t.Fatal("Expected a registry to be created")
	}
	if cfg.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("Namespace = %q, want %q", cfg.Namespace, config.DefaultMetricsNamespace)
	}
	if cfg.MaxPathCardinality != config.DefaultMaxPathCardinality {
		t.Errorf("MaxPathCardinality = %d, want %d", cfg.MaxPathCardinality, config.DefaultMaxPathCardinality)
	}
}

func TestCollector_RecordRequest(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	tests := []struct {
		name     string
		method   string
		path     string
		status   int
		duration time.Duration
	}{
		{name: "created", method: "POST", path: "/api/v1/item", status: 201, duration: 20 * time.Millisecond},
		{name: "not found", method: "GET", path: "/api/v1/item/9", status: 404, duration: 5 * time.Millisecond},
		{name: "server error", method: "GET", path: "/api/v1/item/1", status: 500, duration: 1200 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector.RecordRequest(tt.method, tt.path, tt.status, tt.duration)

			got := testutil.ToFloat64(collector.requestMetrics.requestsTotal.WithLabelValues(tt.method, tt.path, strconv.Itoa(tt.status)))
			if got != 1 {
				t.Errorf("requests_total = %v, want 1", got)
			}
		})
	}

	if n := testutil.CollectAndCount(collector.requestMetrics.requestDuration); n != 3 {
		t.Errorf("request_duration_seconds series = %d, want 3", n)
	}
}

func TestCollector_PathCardinality(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	for _, p := range []string{"/a", "/b", "/c", "/d", "/e"} {
		collector.RecordRequest("GET", p, 200, time.Millisecond)
	}

	if got := testutil.ToFloat64(collector.requestMetrics.requestsTotal.WithLabelValues("GET", OtherPath, "200")); got != 2 {
		t.Errorf("overflow requests = %v, want 2", got)
	}
	if got := collector.paths.Count(); got != 3 {
		t.Errorf("tracked paths = %d, want 3", got)
	}
}

func TestCollector_RecordSlowOperation(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordSlowOperation("function", "items.Service.Create")
	collector.RecordSlowOperation("function", "items.Service.Create")
	collector.RecordSlowOperation("request", "/api/v1/item")

	if got := testutil.ToFloat64(collector.operationMetrics.slowTotal.WithLabelValues("function", "items.Service.Create")); got != 2 {
		t.Errorf("slow function count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.operationMetrics.slowTotal.WithLabelValues("request", "/api/v1/item")); got != 1 {
		t.Errorf("slow request count = %v, want 1", got)
	}
}

func TestCollector_RecordException(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordException("DatabaseException")

	if got := testutil.ToFloat64(collector.operationMetrics.exceptionsTotal.WithLabelValues("DatabaseException")); got != 1 {
		t.Errorf("exceptions_total = %v, want 1", got)
	}
}

func TestCollector_RecordCache(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordCacheHit("items")
	collector.RecordCacheHit("items")
	collector.RecordCacheMiss("items")

	if got := testutil.ToFloat64(collector.cacheMetrics.hitsTotal.WithLabelValues("items")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.cacheMetrics.missesTotal.WithLabelValues("items")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordRequest("GET", "/api/v1/item/1", 200, time.Millisecond)
	collector.RecordSlowOperation("function", "x")
	collector.RecordException("UnexpectedException")
	collector.RecordCacheHit("items")
	collector.RecordCacheMiss("items")

	for name, c := range map[string]prometheus.Collector{
		"requests":   collector.requestMetrics.requestsTotal,
		"slow":       collector.operationMetrics.slowTotal,
		"exceptions": collector.operationMetrics.exceptionsTotal,
		"hits":       collector.cacheMetrics.hitsTotal,
		"misses":     collector.cacheMetrics.missesTotal,
	} {
		if n := testutil.CollectAndCount(c); n != 0 {
			t.Errorf("%s: got %d series with metrics disabled", name, n)
		}
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordRequest("GET", "/api/v1/item/1", 200, 10*time.Millisecond)

	srv := httptest.NewServer(collector.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(body), "test_http_requests_total") {
		t.Errorf("body missing test_http_requests_total:\n%s", body)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	limiter := NewCardinalityLimiter(2)

	if !limiter.Allow("a") || !limiter.Allow("b") {
		t.Fatal("expected first two values to be allowed")
	}
	if limiter.Allow("c") {
		t.Error("expected third value to be rejected")
	}
	if !limiter.Allow("a") {
		t.Error("expected known value to stay allowed")
	}
}

func TestCardinalityLimiter_Concurrent(t *testing.T) {
	limiter := NewCardinalityLimiter(10)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			limiter.Allow(strconv.Itoa(i))
		}(i)
	}
	wg.Wait()

	if got := limiter.Count(); got != 10 {
		t.Errorf("Count() = %d, want 10", got)
	}
}
