package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dinodia/dinodia-core/internal/access"
	"github.com/dinodia/dinodia-core/internal/audit"
	"github.com/dinodia/dinodia-core/internal/bridge"
)

// serviceRequest is the request body for POST /service.
type serviceRequest struct {
	HouseholdID int64          `json:"household_id"`
	EntityID    string         `json:"entity_id"`
	Domain      string         `json:"domain"`
	Service     string         `json:"service"`
	Data        map[string]any `json:"data"`
}

// toggleRequest is the request body for POST /toggle.
type toggleRequest struct {
	HouseholdID int64  `json:"household_id"`
	EntityID    string `json:"entity_id"`
	Domain      string `json:"domain"`
}

// handleService invokes an arbitrary hub service against one entity.
//
// A hub-side failure is not an HTTP error here: the command was
// authorized and attempted, and the result carries the hub's verdict.
func (s *Server) handleService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.bridge.ExecuteControl(r.Context(), bridge.ControlRequest{
		HouseholdID: req.HouseholdID,
		Caller:      bridge.UserCaller(callerID(r)),
		EntityID:    req.EntityID,
		Domain:      req.Domain,
		Service:     req.Service,
		Data:        req.Data,
		Source:      audit.SourceAPI,
	})
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleToggle flips an entity between on and off based on its current
// state.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.bridge.Toggle(r.Context(), req.HouseholdID, bridge.UserCaller(callerID(r)), req.EntityID, req.Domain)
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeControlError maps bridge failures onto HTTP responses.
//
// Forbidden covers unknown entities too; callers cannot distinguish an
// entity they may not see from one that does not exist.
func (s *Server) writeControlError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bridge.ErrInvalidRequest):
		writeBadRequest(w, "household_id, entity_id and service are required")
	case errors.Is(err, access.ErrForbidden):
		writeForbidden(w, "entity not accessible")
	case errors.Is(err, access.ErrHouseholdNotFound):
		writeNotFound(w, "household not found")
	default:
		writeHubError(w, err)
	}
}
