package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dinodia/dinodia-core/internal/hub"
)

// hubRequest is the request body for PUT /households/{id}/hub.
type hubRequest struct {
	BaseURL     string `json:"base_url"`
	AccessToken string `json:"access_token"`
}

// handleGetHub returns the household's hub configuration. Owner only.
// The access token is never serialized outward.
func (s *Server) handleGetHub(w http.ResponseWriter, r *http.Request) {
	hid, err := householdID(r)
	if err != nil {
		writeBadRequest(w, "invalid household id")
		return
	}
	if !s.requireOwner(w, r, hid) {
		return
	}

	instance, err := s.hubInstances.GetByHousehold(r.Context(), hid)
	if err != nil {
		if errors.Is(err, hub.ErrNotConfigured) {
			writeNotFound(w, "no hub configured")
			return
		}
		writeInternalError(w, "failed to load hub configuration")
		return
	}
	writeJSON(w, http.StatusOK, instance)
}

// handleUpsertHub sets the household's hub URL and token. Owner only.
func (s *Server) handleUpsertHub(w http.ResponseWriter, r *http.Request) {
	hid, err := householdID(r)
	if err != nil {
		writeBadRequest(w, "invalid household id")
		return
	}
	if !s.requireOwner(w, r, hid) {
		return
	}

	var req hubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if !strings.HasPrefix(req.BaseURL, "http://") && !strings.HasPrefix(req.BaseURL, "https://") {
		writeBadRequest(w, "base_url must be an http(s) URL")
		return
	}
	if req.AccessToken == "" {
		writeBadRequest(w, "access_token is required")
		return
	}

	instance := &hub.Instance{
		HouseholdID: hid,
		BaseURL:     strings.TrimRight(req.BaseURL, "/"),
		AccessToken: req.AccessToken,
	}
	if err := s.hubInstances.Upsert(r.Context(), instance); err != nil {
		writeInternalError(w, "failed to save hub configuration")
		return
	}
	writeJSON(w, http.StatusOK, instance)
}

// handleDeleteHub removes the household's hub configuration. Owner only.
func (s *Server) handleDeleteHub(w http.ResponseWriter, r *http.Request) {
	hid, err := householdID(r)
	if err != nil {
		writeBadRequest(w, "invalid household id")
		return
	}
	if !s.requireOwner(w, r, hid) {
		return
	}

	if err := s.hubInstances.Delete(r.Context(), hid); err != nil {
		writeInternalError(w, "failed to delete hub configuration")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
