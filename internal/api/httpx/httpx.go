package httpx

import (
	"encoding/json"
	"io"
	"net/http"
)

const (
	CodeInvalidArgument    = "invalid_argument"
	CodeConflict           = "conflict"
	CodeUnauthorized       = "unauthorized"
	CodeNotFound           = "not_found"
	CodeFailedPrecondition = "failed_precondition"
	CodeBadGateway         = "bad_gateway"
	CodeInternal           = "internal_error"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteRaw writes an already encoded JSON body.
func WriteRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// DecodeJSON reads a JSON request body of at most 1 MiB.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
}
