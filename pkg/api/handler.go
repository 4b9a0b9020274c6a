package api

import (
	"errors"
	"net/http"

	"simpleapp/itemsvc/pkg/apperr"
	"simpleapp/itemsvc/pkg/telemetry/logging"
)

// HandlerFunc is an HTTP handler that reports failure by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts fn to an http.Handler.
//
// Application errors become JSON answers: validation errors a 422 with the
// field list, every other kind the failure envelope with the kind's status.
// Server-side kinds also go through logger.Exception, whose policy decides
// whether they are logged. Any other error is raised as a panic so the
// tracing and recovery middleware see it.
func Handle(logger *logging.Logger, fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		var appErr *apperr.Error
		if !errors.As(err, &appErr) {
			panic(err)
		}

		if appErr.Kind == apperr.KindValidation {
			writeValidation(logger, w, r, appErr)
			return
		}

		status := appErr.StatusCode()
		if status >= http.StatusInternalServerError {
			logger.Exception(r.Context(), err, "request failed", map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": status,
			})
		}
		WriteFailure(w, status, appErr.Message())
	})
}

func writeValidation(logger *logging.Logger, w http.ResponseWriter, r *http.Request, err *apperr.Error) {
	fields := err.Fields
	if fields == nil {
		fields = []apperr.FieldError{}
	}

	extra := map[string]any{
		"path":        r.URL.Path,
		"method":      r.Method,
		"error_count": len(fields),
	}
	if len(fields) > 0 {
		extra["first_error"] = map[string]any{
			"field":   fields[0].Field,
			"message": fields[0].Message,
			"type":    fields[0].Type,
		}
	}
	logger.Error(r.Context(), "Request validation error", extra)

	WriteJSON(w, err.StatusCode(), ValidationResponse{
		Status:  StatusError,
		Message: err.Message(),
		Errors:  fields,
	})
}
