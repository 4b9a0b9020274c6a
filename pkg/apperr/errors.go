// Package apperr defines the typed application errors of the item service.
//
// Every error the service raises on purpose is an *Error carrying a Kind. The
// kind decides the HTTP status the API answers with and the class name the
// exception logging policy filters on.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// KindUnexpected is an error nobody anticipated.
	KindUnexpected Kind = iota
	KindNotAuthorized
	KindBadRequest
	KindNotFound
	KindConflict
	KindInvalidCredentials
	KindDatabase
	KindDatabaseIntegrity
	KindValidation
)

var kindInfo = map[Kind]struct {
	class   string
	status  int
	message string
}{
	KindUnexpected:         {"UnexpectedException", http.StatusInternalServerError, "Something Went Wrong"},
	KindNotAuthorized:      {"NotAuthorizedException", http.StatusUnauthorized, "Not authorized"},
	KindBadRequest:         {"BadRequestException", http.StatusBadRequest, "Bad Request"},
	KindNotFound:           {"NotFoundException", http.StatusNotFound, "Not Found"},
	KindConflict:           {"ConflictException", http.StatusConflict, "Conflict"},
	KindInvalidCredentials: {"InvalidCredentialsException", http.StatusUnauthorized, "Invalid credentials"},
	KindDatabase:           {"DatabaseException", http.StatusInternalServerError, "A database error occurred"},
	KindDatabaseIntegrity:  {"DatabaseIntegrityException", http.StatusInternalServerError, "A database integrity error occurred"},
	KindValidation:         {"RequestValidationError", http.StatusUnprocessableEntity, "Validation failed"},
}

// ClassName returns the exception class name associated with the kind.
func (k Kind) ClassName() string {
	if info, ok := kindInfo[k]; ok {
		return info.class
	}
	return kindInfo[KindUnexpected].class
}

// StatusCode returns the HTTP status the API answers with for the kind.
func (k Kind) StatusCode() int {
	if info, ok := kindInfo[k]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func (k Kind) String() string {
	return k.ClassName()
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// Error is a typed application error.
type Error struct {
	Kind Kind

	// Detail is the client-facing message. Empty means the kind's default.
	Detail string

	// Err is the underlying cause, if any.
	Err error

	// Fields lists per-field problems for validation errors.
	Fields []FieldError
}

func (e *Error) Error() string {
	msg := e.Message()
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Message returns the client-facing message.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return kindInfo[e.Kind].message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the error.
func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

// ClassName returns the exception class name of the error.
func (e *Error) ClassName() string {
	return e.Kind.ClassName()
}

// New creates an error of the given kind with a client-facing detail.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, cause error, detail string) *Error {
	return &Error{Kind: kind, Detail: detail, Err: cause}
}

// NotFound reports a missing resource.
func NotFound(detail string) *Error { return New(KindNotFound, detail) }

// BadRequest reports malformed client input.
func BadRequest(detail string) *Error { return New(KindBadRequest, detail) }

// Conflict reports a state conflict.
func Conflict(detail string) *Error { return New(KindConflict, detail) }

// NotAuthorized reports a missing or insufficient authorization.
func NotAuthorized(detail string) *Error { return New(KindNotAuthorized, detail) }

// InvalidCredentials reports rejected credentials.
func InvalidCredentials(detail string) *Error { return New(KindInvalidCredentials, detail) }

// Unexpected wraps an error nobody anticipated.
func Unexpected(cause error) *Error { return Wrap(KindUnexpected, cause, "") }

// Database wraps a storage failure.
func Database(cause error) *Error { return Wrap(KindDatabase, cause, "") }

// DatabaseIntegrity wraps a constraint violation.
func DatabaseIntegrity(cause error) *Error { return Wrap(KindDatabaseIntegrity, cause, "") }

// Validation reports invalid input fields.
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

// KindOf returns the kind of the first *Error in err's chain.
// Errors without one are KindUnexpected.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// ClassOf returns the class name used to classify err.
//
// Application errors report their kind's class name. Any other error reports
// its dynamic Go type, so distinct error types stay distinguishable.
func ClassOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.ClassName()
	}
	return fmt.Sprintf("%T", err)
}

// Is reports whether err carries an application error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
