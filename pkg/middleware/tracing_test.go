package middleware

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"simpleapp/itemsvc/internal/telemetrytest"
	"simpleapp/itemsvc/pkg/telemetry/logging"
	"simpleapp/itemsvc/pkg/telemetry/tracing"
)

type recordedRequest struct {
	method string
	path   string
	status int
}

type fakeRecorder struct {
	telemetrytest.SlowRecorder
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeRecorder) RecordRequest(method, path string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{method, path, status})
}

type harness struct {
	handler  http.Handler
	spans    *tracetest.SpanRecorder
	logs     *telemetrytest.LogBuffer
	clock    *telemetrytest.Clock
	recorder *fakeRecorder
}

func newHarness(t *testing.T, environment string, next http.Handler) *harness {
	t.Helper()
	tracer, spans := telemetrytest.NewTracer(t)
	logger, logs := telemetrytest.NewLogger(t, environment, nil)
	clock := telemetrytest.NewClock()
	recorder := &fakeRecorder{}

	cfg := DefaultTracingConfig()
	cfg.Now = clock.Now

	return &harness{
		handler:  Tracing(tracer, logger, recorder, cfg)(next),
		spans:    spans,
		logs:     logs,
		clock:    clock,
		recorder: recorder,
	}
}

func (h *harness) sleepy(d time.Duration, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.clock.Advance(d)
		w.WriteHeader(status)
	})
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTracing_SkipPaths(t *testing.T) {
	paths := []string{"/health", "/health/live", "/metrics", "/static/app.css", "/favicon.ico"}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			called := false
			h := newHarness(t, "development", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				if tracing.HasCurrent(r.Context()) {
					t.Error("skipped request has a current span")
				}
				w.WriteHeader(http.StatusOK)
			}))

			w := httptest.NewRecorder()
			h.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			if !called {
				t.Fatal("next handler not called")
			}
			if n := len(h.spans.Ended()); n != 0 {
				t.Errorf("spans = %d, want 0", n)
			}
			if n := len(h.logs.Records(t)); n != 0 {
				t.Errorf("log records = %d, want 0", n)
			}
			if w.Header().Get(ProcessTimeHeader) != "" {
				t.Error("skipped response has X-Process-Time")
			}
			if len(h.recorder.requests) != 0 {
				t.Error("skipped request was recorded")
			}
		})
	}
}

func TestTracing_SkipMatchesWholeSegments(t *testing.T) {
	tests := []struct {
		path     string
		skips    []string
		wantSpan bool
	}{
		{"/health", []string{"/health"}, false},
		{"/health/ready", []string{"/health"}, false},
		{"/healthcare/records", []string{"/health"}, true},
		{"/metricsz", []string{"/metrics"}, true},
		{"/static/app.js", []string{"/static/"}, false},
		{"/statics", []string{"/static/"}, true},
		{"/api/v1/item/get-item/1", []string{"", "/health"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			tracer, spans := telemetrytest.NewTracer(t)
			logger, _ := telemetrytest.NewLogger(t, "production", nil)
			cfg := DefaultTracingConfig()
			cfg.SkipPaths = tt.skips

			handler := Tracing(tracer, logger, nil, cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			if got := len(spans.Ended()) == 1; got != tt.wantSpan {
				t.Errorf("traced = %v, want %v", got, tt.wantSpan)
			}
		})
	}
}

func TestTracing_SlowRequest(t *testing.T) {
	var h *harness
	h = newHarness(t, "production", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.clock.Advance(1300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	got, err := strconv.ParseFloat(w.Header().Get(ProcessTimeHeader), 64)
	if err != nil || !approx(got, 1.3) {
		t.Errorf("X-Process-Time = %q, want 1.3", w.Header().Get(ProcessTimeHeader))
	}

	warnings := h.logs.RecordsAt(t, "WARN")
	if len(warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(warnings))
	}
	fields := warnings[0].Fields()
	if fields["method"] != "GET" || fields["path"] != "/items/42" {
		t.Errorf("fields = %v", fields)
	}
	if fields["status_code"] != float64(200) {
		t.Errorf("status_code = %v, want 200", fields["status_code"])
	}
	if pt, _ := fields["process_time"].(float64); !approx(pt, 1.3) {
		t.Errorf("process_time = %v, want 1.3", fields["process_time"])
	}
	if _, ok := fields["request_id"]; !ok {
		t.Error("request_id missing from slow response fields")
	}
	if h.recorder.Len() != 1 || h.recorder.Calls[0].Name != "/items/42" {
		t.Errorf("slow calls = %v", h.recorder.Calls)
	}
}

func TestTracing_Completed(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		status  int
	}{
		{name: "ok", elapsed: 20 * time.Millisecond, status: http.StatusOK},
		{name: "not found", elapsed: 5 * time.Millisecond, status: http.StatusNotFound},
		{name: "exactly at threshold", elapsed: time.Second, status: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h *harness
			h = newHarness(t, "production", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				h.clock.Advance(tt.elapsed)
				w.WriteHeader(tt.status)
			}))

			w := httptest.NewRecorder()
			h.handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/item/create-item", nil))

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if w.Header().Get(ProcessTimeHeader) == "" {
				t.Error("missing X-Process-Time")
			}
			if n := len(h.logs.Records(t)); n != 0 {
				t.Errorf("log records = %d, want 0", n)
			}

			span := telemetrytest.SpanNamed(t, h.spans, "POST /api/v1/item/create-item")
			attrs := telemetrytest.Attrs(span.Attributes())
			if attrs["http.status_code"] != strconv.Itoa(tt.status) {
				t.Errorf("http.status_code = %q, want %d", attrs["http.status_code"], tt.status)
			}
			if attrs["method"] != "POST" || attrs["path"] != "/api/v1/item/create-item" || attrs["request_id"] != "" {
				t.Errorf("attributes = %v", attrs)
			}
			if d, ok := telemetrytest.Attr(span.Attributes(), tracing.AttrHTTPDuration); !ok || !approx(d.AsFloat64(), tt.elapsed.Seconds()) {
				t.Errorf("http.duration = %v, want %v", d.AsFloat64(), tt.elapsed.Seconds())
			}
			if span.Status().Code == codes.Error {
				t.Error("span status = Error for completed request")
			}

			want := recordedRequest{"POST", "/api/v1/item/create-item", tt.status}
			if len(h.recorder.requests) != 1 || h.recorder.requests[0] != want {
				t.Errorf("recorded = %v, want %v", h.recorder.requests, want)
			}
		})
	}
}

func TestTracing_HandlerWritesNothing(t *testing.T) {
	h := newHarness(t, "production", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/empty", nil))

	if w.Header().Get(ProcessTimeHeader) == "" {
		t.Error("missing X-Process-Time when the handler wrote nothing")
	}
}

func TestTracing_FailedRequest(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name        string
		environment string
		wantLogged  bool
	}{
		{name: "filtered in production", environment: "production"},
		{name: "logged in development", environment: "development", wantLogged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h *harness
			h = newHarness(t, tt.environment, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				h.clock.Advance(250 * time.Millisecond)
				panic(boom)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/item/get-item/1", nil)
			req.Header.Set(RequestIDHeader, "req-1")
			w := httptest.NewRecorder()

			func() {
				defer func() {
					if r := recover(); r != boom {
						t.Fatalf("recovered %v, want the original error", r)
					}
				}()
				h.handler.ServeHTTP(w, req)
				t.Fatal("panic was not re-raised")
			}()

			span := telemetrytest.SpanNamed(t, h.spans, "GET /api/v1/item/get-item/1")
			if span.Status().Code != codes.Error || span.Status().Description != "boom" {
				t.Errorf("span status = %+v, want Error boom", span.Status())
			}
			if n := telemetrytest.ExceptionEvents(span); n != 1 {
				t.Errorf("exception events = %d, want 1", n)
			}
			if w.Header().Get(ProcessTimeHeader) == "" {
				t.Error("missing X-Process-Time on failed request")
			}
			if len(h.recorder.requests) != 1 || h.recorder.requests[0].status != http.StatusInternalServerError {
				t.Errorf("recorded = %v", h.recorder.requests)
			}

			errs := h.logs.RecordsAt(t, "ERROR")
			if !tt.wantLogged {
				if len(errs) != 0 {
					t.Errorf("error records = %d, want 0", len(errs))
				}
				return
			}
			if len(errs) != 1 {
				t.Fatalf("error records = %d, want 1", len(errs))
			}
			fields := errs[0].Fields()
			if fields["error_type"] != "*errors.errorString" {
				t.Errorf("error_type = %v", fields["error_type"])
			}
			if pt, _ := fields["process_time"].(float64); !approx(pt, 0.25) {
				t.Errorf("process_time = %v, want 0.25", fields["process_time"])
			}
			if fields["request_id"] != "req-1" || fields["method"] != "GET" {
				t.Errorf("fields = %v", fields)
			}
			if errs[0]["request_id"] != "req-1" {
				t.Errorf("top-level request_id = %v", errs[0]["request_id"])
			}
		})
	}
}

func TestTracing_RequestID(t *testing.T) {
	var seen string
	h := newHarness(t, "production", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/item/get-item/1", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)

	if seen != "abc-123" {
		t.Errorf("request ID in context = %q, want abc-123", seen)
	}
	if w.Header().Get(RequestIDHeader) != "" {
		t.Error("request ID must not be echoed")
	}
	span := telemetrytest.SpanNamed(t, h.spans, "GET /api/v1/item/get-item/1")
	if got := telemetrytest.Attrs(span.Attributes())["request_id"]; got != "abc-123" {
		t.Errorf("span request_id = %q", got)
	}
}

func TestTracing_MissingRequestIDNotGenerated(t *testing.T) {
	var seen string
	h := newHarness(t, "production", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	if seen != "" {
		t.Errorf("request ID = %q, want empty", seen)
	}
	if w.Header().Get(RequestIDHeader) != "" {
		t.Error("request ID header was generated")
	}
}

func TestTracing_ExtractsTraceContext(t *testing.T) {
	h := newHarness(t, "production", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	h.handler.ServeHTTP(httptest.NewRecorder(), req)

	span := telemetrytest.SpanNamed(t, h.spans, "GET /x")
	if got := span.SpanContext().TraceID().String(); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace ID = %s", got)
	}
	if got := span.Parent().SpanID().String(); got != "00f067aa0ba902b7" {
		t.Errorf("parent span ID = %s", got)
	}
}

func TestTracing_SpanCurrentInHandler(t *testing.T) {
	var inner trace.SpanContext
	h := newHarness(t, "production", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = tracing.Current(r.Context()).SpanContext()
	}))

	h.handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	span := telemetrytest.SpanNamed(t, h.spans, "GET /x")
	if inner.SpanID() != span.SpanContext().SpanID() {
		t.Error("request span is not current inside the handler")
	}
}

func TestTracing_ConcurrentRequests(t *testing.T) {
	h := newHarness(t, "production", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/"+strconv.Itoa(i), nil))
		}(i)
	}
	wg.Wait()

	traces := map[string]bool{}
	for _, s := range h.spans.Ended() {
		if s.Parent().IsValid() {
			t.Errorf("span %q has a parent from another request", s.Name())
		}
		traces[s.SpanContext().TraceID().String()] = true
	}
	if len(traces) != 25 {
		t.Errorf("distinct traces = %d, want 25", len(traces))
	}
}

func TestTracing_WithRecovery(t *testing.T) {
	tracer, spans := telemetrytest.NewTracer(t)
	logger, logs := telemetrytest.NewLogger(t, "production", nil)

	handler := Recovery(logger)(Tracing(tracer, logger, nil, DefaultTracingConfig())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(errors.New("broken"))
		})))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/item/get-item/1", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if w.Header().Get(ProcessTimeHeader) == "" {
		t.Error("missing X-Process-Time on recovered response")
	}
	if span := telemetrytest.SpanNamed(t, spans, "GET /api/v1/item/get-item/1"); span.Status().Code != codes.Error {
		t.Error("span status is not Error")
	}
	if n := len(logs.RecordsAt(t, "ERROR")); n != 0 {
		t.Errorf("error records = %d, want 0 for a filtered class", n)
	}
}

func BenchmarkTracing(b *testing.B) {
	tracer, _ := telemetrytest.NewTracer(b)
	logger, _ := telemetrytest.NewLogger(b, "production", nil)
	handler := Tracing(tracer, logger, nil, DefaultTracingConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/item/get-item/1", nil).WithContext(context.Background())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}
