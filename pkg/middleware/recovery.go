package middleware

import (
	"net/http"

	"simpleapp/itemsvc/pkg/api"
	"simpleapp/itemsvc/pkg/apperr"
	"simpleapp/itemsvc/pkg/telemetry/logging"
	"simpleapp/itemsvc/pkg/telemetry/tracing"
)

// Recovery recovers from panics in HTTP handlers and answers 500 with the
// standard failure envelope. It sits outside Tracing, which has already
// recorded the failure by the time the panic reaches it. Panics Tracing did
// not see, such as those on skipped paths, are passed to logger.Exception so
// the exception policy still decides whether they are logged.
//
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
//
// Example usage:
//
//	handler = Recovery(logger)(handler)
func Recovery(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseWriter(w, nil)
			ctx, observed := withPanicMark(r.Context())

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				if !*observed {
					logger.Exception(ctx, tracing.RecoveredError(rec), "panic in handler", map[string]any{
						"method": r.Method,
						"path":   r.URL.Path,
					})
				}

				if rw.written {
					return
				}
				api.WriteFailure(rw, http.StatusInternalServerError, apperr.Unexpected(nil).Message())
			}()

			next.ServeHTTP(rw, r.WithContext(ctx))
		})
	}
}
