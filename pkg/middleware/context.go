package middleware

import "context"

// Headers read or written by the middleware.
const (
	// RequestIDHeader carries the caller's request ID. It is read, never
	// generated or echoed.
	RequestIDHeader = "X-Request-ID"

	// ProcessTimeHeader carries the handling time in seconds.
	ProcessTimeHeader = "X-Process-Time"
)

type panicMarkKey struct{}

// withPanicMark returns a context whose panics can be marked as already
// observed, and the flag that records it.
func withPanicMark(ctx context.Context) (context.Context, *bool) {
	observed := new(bool)
	return context.WithValue(ctx, panicMarkKey{}, observed), observed
}

// markPanicObserved notes that the panic in flight has been recorded and
// passed to the exception policy.
func markPanicObserved(ctx context.Context) {
	if observed, ok := ctx.Value(panicMarkKey{}).(*bool); ok {
		*observed = true
	}
}
