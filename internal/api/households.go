package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dinodia/dinodia-core/internal/access"
	"github.com/dinodia/dinodia-core/internal/bridge"
	"github.com/dinodia/dinodia-core/internal/device"
)

// householdID parses the {id} URL parameter.
func householdID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// requireOwner resolves the caller's grant and rejects non-owners.
// Strangers and tenants get the same 403; membership in a household is
// not disclosed to callers who cannot manage it.
func (s *Server) requireOwner(w http.ResponseWriter, r *http.Request, hid int64) bool {
	grant, err := s.resolver.ResolveRole(r.Context(), hid, callerID(r))
	if err != nil {
		if errors.Is(err, access.ErrHouseholdNotFound) {
			writeNotFound(w, "household not found")
			return false
		}
		writeInternalError(w, "failed to resolve role")
		return false
	}
	if grant.Role != access.RoleOwner {
		writeForbidden(w, "owner access required")
		return false
	}
	return true
}

// handleListHouseholds returns the households the caller owns or is a member of.
func (s *Server) handleListHouseholds(w http.ResponseWriter, r *http.Request) {
	households, err := s.households.ListForUser(r.Context(), callerID(r))
	if err != nil {
		writeInternalError(w, "failed to list households")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"households": households,
		"count":      len(households),
	})
}

// createHouseholdRequest is the request body for POST /households.
type createHouseholdRequest struct {
	Name string `json:"name"`
}

// handleCreateHousehold creates a household owned by the caller.
func (s *Server) handleCreateHousehold(w http.ResponseWriter, r *http.Request) {
	var req createHouseholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	household := &access.Household{
		Name:    req.Name,
		OwnerID: callerID(r),
	}
	if err := s.households.Create(r.Context(), household); err != nil {
		writeInternalError(w, "failed to create household")
		return
	}
	writeJSON(w, http.StatusCreated, household)
}

// handleListDevices returns the caller's visible slice of the household's
// devices, enriched with area, labels and category.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	hid, err := householdID(r)
	if err != nil {
		writeBadRequest(w, "invalid household id")
		return
	}

	devices, err := s.bridge.VisibleDevices(r.Context(), hid, bridge.UserCaller(callerID(r)))
	if err != nil {
		if errors.Is(err, access.ErrHouseholdNotFound) {
			writeNotFound(w, "household not found")
			return
		}
		writeHubError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleMetadata returns the areas and labels detected on the household's
// hub plus the recognised category catalog, for building membership
// filters. Owner only.
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	hid, err := householdID(r)
	if err != nil {
		writeBadRequest(w, "invalid household id")
		return
	}
	if !s.requireOwner(w, r, hid) {
		return
	}

	devices, err := s.aggregator.Devices(r.Context(), hid)
	if err != nil {
		writeHubError(w, err)
		return
	}

	areas, labels := device.AreasAndLabels(devices)
	writeJSON(w, http.StatusOK, map[string]any{
		"areas":      areas,
		"labels":     labels,
		"categories": device.CategoryOptions(),
	})
}

// handlePing probes the household's hub connectivity. Owner only.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	hid, err := householdID(r)
	if err != nil {
		writeBadRequest(w, "invalid household id")
		return
	}
	if !s.requireOwner(w, r, hid) {
		return
	}

	if err := s.hubPinger.Ping(r.Context(), hid); err != nil {
		writeHubError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
