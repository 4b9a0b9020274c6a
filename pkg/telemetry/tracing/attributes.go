package tracing

import (
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys set by the request and function instrumentation.
const (
	AttrRequestID = "request_id"
	AttrMethod    = "method"
	AttrPath      = "path"

	AttrHTTPStatusCode = "http.status_code"
	AttrHTTPDuration   = "http.duration"

	AttrFunctionDuration = "function.duration_ms"
)

// Attributes converts a field map to span attributes. Scalars keep their
// type; anything else is rendered with fmt. Keys are sorted for a stable
// order.
func Attributes(fields map[string]any) []attribute.KeyValue {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]attribute.KeyValue, 0, len(fields))
	for _, k := range keys {
		attrs = append(attrs, Attribute(k, fields[k]))
	}
	return attrs
}

// Attribute converts a single field to a span attribute.
func Attribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int32:
		return attribute.Int64(key, int64(v))
	case int64:
		return attribute.Int64(key, v)
	case uint32:
		return attribute.Int64(key, int64(v))
	case float32:
		return attribute.Float64(key, float64(v))
	case float64:
		return attribute.Float64(key, v)
	case time.Duration:
		return attribute.String(key, v.String())
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	case error:
		return attribute.String(key, v.Error())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}

// RecordError records err as an exception event with a stack trace and sets
// the span status to Error with err's message.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err, trace.WithStackTrace(true))
	span.SetStatus(codes.Error, err.Error())
}

// SetStatus sets the span status based on an error.
// If err is nil, status is set to OK, otherwise to Error.
func SetStatus(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
