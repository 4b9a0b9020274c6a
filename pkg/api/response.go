package api

import (
	"encoding/json"
	"net/http"
)

// Response statuses used in JSON envelopes.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusError   = "error"
)

// Response is the standard JSON envelope of every API answer.
type Response struct {
	Data    any    `json:"data"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ValidationResponse is the body of a 422 answer.
type ValidationResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Errors  any    `json:"errors"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a success envelope.
func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Response{Data: data, Status: StatusSuccess, Message: message})
}

// WriteFailure writes a failure envelope with no data.
func WriteFailure(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{Status: StatusFailed, Message: message})
}
