package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/dinodia/dinodia-core/internal/bridge"
)

// handleAlexa processes an Alexa Smart Home directive.
//
// Per the Smart Home contract, handled failures still return 200 with
// an ErrorResponse event inside; only an unreadable envelope is an
// HTTP-level 400.
func (s *Server) handleAlexa(w http.ResponseWriter, r *http.Request) {
	if s.alexa == nil {
		writeNotFound(w, "alexa integration not configured")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "unreadable request body")
		return
	}

	resp, err := s.alexa.HandleDirective(r.Context(), body)
	if err != nil {
		if errors.Is(err, bridge.ErrInvalidRequest) {
			writeBadRequest(w, "invalid directive envelope")
			return
		}
		writeInternalError(w, "directive handling failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGoogle processes a Google Smart Home fulfillment request.
// Same contract as Alexa: per-device failures ride inside a 200.
func (s *Server) handleGoogle(w http.ResponseWriter, r *http.Request) {
	if s.google == nil {
		writeNotFound(w, "google integration not configured")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "unreadable request body")
		return
	}

	resp, err := s.google.HandleFulfillment(r.Context(), body)
	if err != nil {
		if errors.Is(err, bridge.ErrInvalidRequest) {
			writeBadRequest(w, "invalid fulfillment envelope")
			return
		}
		writeInternalError(w, "fulfillment handling failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
