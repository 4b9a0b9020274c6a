// Package telemetrytest provides recording loggers, tracers and metrics for
// tests of instrumented code.
package telemetrytest

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"simpleapp/itemsvc/pkg/telemetry/logging"
	"simpleapp/itemsvc/pkg/telemetry/tracing"
)

// LogBuffer collects JSON log lines. It is safe for concurrent writers.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Record is one decoded log line.
type Record map[string]any

// Message returns the record message.
func (r Record) Message() string {
	s, _ := r["msg"].(string)
	return s
}

// Level returns the slog level name ("DEBUG", "INFO", "WARN", "ERROR").
func (r Record) Level() string {
	s, _ := r["level"].(string)
	return s
}

// Fields returns the caller's extra fields.
func (r Record) Fields() map[string]any {
	m, _ := r[logging.FieldsKey].(map[string]any)
	return m
}

// Records decodes every line written so far.
func (b *LogBuffer) Records(t testing.TB) []Record {
	t.Helper()
	b.mu.Lock()
	data := b.buf.String()
	b.mu.Unlock()

	var out []Record
	for _, line := range strings.Split(strings.TrimSpace(data), "\n") {
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("invalid JSON record %q: %v", line, err)
		}
		out = append(out, rec)
	}
	return out
}

// RecordsAt returns the records at the given slog level name.
func (b *LogBuffer) RecordsAt(t testing.TB, level string) []Record {
	t.Helper()
	var out []Record
	for _, rec := range b.Records(t) {
		if rec.Level() == level {
			out = append(out, rec)
		}
	}
	return out
}

// NewLogger returns a JSON logger at debug level writing to a LogBuffer.
func NewLogger(t testing.TB, environment string, recorder logging.ExceptionRecorder) (*logging.Logger, *LogBuffer) {
	t.Helper()
	buf := &LogBuffer{}
	logger, err := logging.New(logging.Config{
		Level:       "debug",
		Format:      "json",
		Environment: environment,
		Recorder:    recorder,
		Writer:      buf,
	})
	if err != nil {
		t.Fatalf("logging.New() error = %v", err)
	}
	return logger, buf
}

// NewTracer returns a tracer whose spans are captured by a SpanRecorder.
func NewTracer(t testing.TB) (*tracing.Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tracing.NewWithProvider(tp), sr
}

// SpanNamed returns the first ended span with the given name.
func SpanNamed(t testing.TB, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, s := range sr.Ended() {
		if s.Name() == name {
			return s
		}
	}
	t.Fatalf("no ended span named %q", name)
	return nil
}

// Attrs flattens span attributes to their string forms.
func Attrs(kvs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

// Attr returns one attribute value.
func Attr(kvs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range kvs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

// ExceptionEvents counts the recorded exception events of a span.
func ExceptionEvents(s sdktrace.ReadOnlySpan) int {
	n := 0
	for _, ev := range s.Events() {
		if ev.Name == "exception" {
			n++
		}
	}
	return n
}

// SlowRecorder collects slow operation reports.
type SlowRecorder struct {
	mu    sync.Mutex
	Calls []SlowCall
}

// SlowCall is one RecordSlowOperation call.
type SlowCall struct {
	Kind string
	Name string
}

func (r *SlowRecorder) RecordSlowOperation(kind, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, SlowCall{Kind: kind, Name: name})
}

// Len returns the number of recorded calls.
func (r *SlowRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Calls)
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock stopped at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current clock time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
