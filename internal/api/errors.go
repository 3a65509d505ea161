package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dinodia/dinodia-core/internal/hub"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeForbidden    = "forbidden"
	ErrCodeConflict     = "conflict"
	ErrCodeBadGateway   = "hub_unavailable"
	ErrCodeInternal     = "internal_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeHubError maps hub client failures onto HTTP responses.
//
// A missing hub configuration is the household's problem (409); an
// unreachable or misbehaving hub is upstream's (502). Anything else is
// ours (500).
func writeHubError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, hub.ErrNotConfigured):
		writeError(w, http.StatusConflict, ErrCodeConflict, "no hub configured for this household")
	case errors.Is(err, hub.ErrUnauthorized):
		writeError(w, http.StatusBadGateway, ErrCodeBadGateway, "hub rejected the configured access token")
	case errors.Is(err, hub.ErrUnreachable), errors.Is(err, hub.ErrProtocol), errors.Is(err, hub.ErrTemplate):
		writeError(w, http.StatusBadGateway, ErrCodeBadGateway, "hub request failed")
	default:
		writeInternalError(w, "internal server error")
	}
}
