package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"simpleapp/itemsvc/pkg/apperr"
)

// MaxRequestBodySize is the maximum allowed request body size (1MB).
const MaxRequestBodySize = 1 << 20

// DecodeJSON decodes the request body into dst. Unknown fields, malformed
// JSON and mistyped values are reported as validation errors.
func DecodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		return apperr.Wrap(apperr.KindBadRequest, err, "failed to read request body")
	}
	if len(body) > MaxRequestBodySize {
		return apperr.BadRequest(fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return apperr.Validation(apperr.FieldError{
			Field:   "body",
			Message: "JSON decode error",
			Type:    "json_invalid",
		})
	}
	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Validation(apperr.FieldError{
			Field:   "body." + typeErr.Field,
			Message: fmt.Sprintf("Input should be a valid %s", typeErr.Type),
			Type:    "type_error",
		})
	}

	// encoding/json has no typed error for unknown fields.
	if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return apperr.Validation(apperr.FieldError{
			Field:   "body." + strings.Trim(name, `"`),
			Message: "Extra inputs are not permitted",
			Type:    "extra_forbidden",
		})
	}

	if errors.Is(err, io.EOF) {
		return apperr.Validation(apperr.FieldError{
			Field:   "body",
			Message: "Field required",
			Type:    "missing",
		})
	}

	return apperr.Validation(apperr.FieldError{
		Field:   "body",
		Message: "JSON decode error",
		Type:    "json_invalid",
	})
}
