package middleware

import (
	"net/http"
)

// responseWriter wraps http.ResponseWriter to capture the status code and
// run a hook just before the header is sent.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
	beforeSend func(http.Header)
}

// newResponseWriter creates a new response writer wrapper.
func newResponseWriter(w http.ResponseWriter, beforeSend func(http.Header)) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
		beforeSend:     beforeSend,
	}
}

// WriteHeader captures the status code before writing.
func (rw *responseWriter) WriteHeader(code int) {
	if rw.written {
		return
	}
	rw.statusCode = code
	rw.written = true
	if rw.beforeSend != nil {
		rw.beforeSend(rw.ResponseWriter.Header())
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Write ensures WriteHeader is called if not already done.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Flush implements http.Flusher when the wrapped writer does.
func (rw *responseWriter) Flush() {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the wrapped writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// stamp runs the hook on a response whose header has not been sent yet.
func (rw *responseWriter) stamp() {
	if !rw.written && rw.beforeSend != nil {
		rw.beforeSend(rw.ResponseWriter.Header())
	}
}
