package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"simpleapp/itemsvc/pkg/apperr"
	"simpleapp/itemsvc/pkg/config"
	"simpleapp/itemsvc/pkg/telemetry/logging"
	"simpleapp/itemsvc/pkg/telemetry/tracing"
)

// RequestRecorder receives per-request measurements.
// *metrics.Collector implements it.
type RequestRecorder interface {
	RecordRequest(method, path string, status int, duration time.Duration)
	RecordSlowOperation(kind, name string)
}

// TracingConfig contains configuration for the tracing middleware.
type TracingConfig struct {
	// SkipPaths are path prefixes served without any instrumentation.
	SkipPaths []string

	// SlowThreshold is the elapsed time above which a response is logged
	// as slow.
	SlowThreshold time.Duration

	// Now is the time source. Defaults to time.Now.
	Now func() time.Time
}

// DefaultTracingConfig returns the default tracing middleware configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		SkipPaths:     config.DefaultSkipPaths(),
		SlowThreshold: config.DefaultSlowRequestThreshold,
	}
}

// Tracing opens a span named "METHOD path" around every request whose path
// does not start with a skip prefix.
//
// The span carries request_id, method and path, and on completion
// http.status_code and http.duration. Every instrumented response gets an
// X-Process-Time header in seconds. Responses slower than the threshold are
// logged as warnings.
//
// A panic from next is the request failing: it is recorded on the span,
// passed to logger.Exception with the request context, and re-raised with
// its original value. The middleware never turns one outcome into another.
//
// Example usage:
//
//	handler = Tracing(tracer, logger, collector, DefaultTracingConfig())(handler)
func Tracing(tracer *tracing.Tracer, logger *logging.Logger, recorder RequestRecorder, cfg TracingConfig) func(http.Handler) http.Handler {
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = config.DefaultSlowRequestThreshold
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	skip := append([]string(nil), cfg.SkipPaths...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if skipped(path, skip) {
				next.ServeHTTP(w, r)
				return
			}

			start := now()
			method := r.Method
			requestID := r.Header.Get(RequestIDHeader)
			logContext := map[string]any{
				"request_id": requestID,
				"method":     method,
				"path":       path,
			}

			ctx := tracing.Extract(r.Context(), r.Header)
			if requestID != "" {
				ctx = logging.WithRequestID(ctx, requestID)
			}
			ctx, scope := tracer.StartScope(ctx, method+" "+path, logContext)
			span := scope.Span()

			rw := newResponseWriter(w, func(h http.Header) {
				h.Set(ProcessTimeHeader, formatSeconds(now().Sub(start)))
			})

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				elapsed := now().Sub(start)
				err := tracing.RecoveredError(rec)

				fields := copyFields(logContext)
				fields["process_time"] = elapsed.Seconds()
				fields["error_type"] = apperr.ClassOf(err)

				// Exception records on the span itself when its policy logs err.
				if !logger.ShouldLogException(err) {
					tracing.RecordError(span, err)
				}
				logger.Exception(ctx, err, "request processing failed", fields)
				markPanicObserved(ctx)

				rw.stamp()
				status := http.StatusInternalServerError
				if rw.written {
					status = rw.statusCode
				}
				if recorder != nil {
					recorder.RecordRequest(method, path, status, elapsed)
				}
				scope.End()
				panic(rec)
			}()

			next.ServeHTTP(rw, r.WithContext(ctx))

			rw.stamp()
			elapsed := now().Sub(start)
			status := rw.statusCode

			span.SetAttributes(
				attribute.Int(tracing.AttrHTTPStatusCode, status),
				attribute.Float64(tracing.AttrHTTPDuration, elapsed.Seconds()),
			)
			if recorder != nil {
				recorder.RecordRequest(method, path, status, elapsed)
			}

			if elapsed > cfg.SlowThreshold {
				fields := copyFields(logContext)
				fields["status_code"] = status
				fields["process_time"] = elapsed.Seconds()
				logger.Warning(ctx, fmt.Sprintf("slow response: %ss", formatSeconds(elapsed)), fields)
				if recorder != nil {
					recorder.RecordSlowOperation("request", path)
				}
			}

			scope.End()
		})
	}
}

// skipped reports whether path falls under one of prefixes. Prefixes match
// whole path segments: "/health" covers "/health/live" but not "/healthcare".
func skipped(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		switch {
		case prefix == "":
			continue
		case path == prefix:
			return true
		case strings.HasSuffix(prefix, "/"):
			if strings.HasPrefix(path, prefix) {
				return true
			}
		case strings.HasPrefix(path, prefix+"/"):
			return true
		}
	}
	return false
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func copyFields(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src)+2)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
