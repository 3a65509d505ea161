package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dinodia/dinodia-core/internal/access"
	"github.com/dinodia/dinodia-core/internal/auth"
)

// memberRequest is the request body for creating or updating a membership.
//
// Filters are pointers: absent or null means "no restriction" for that
// dimension, and the repository normalizes blank strings the same way.
type memberRequest struct {
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	AreaFilter  *string `json:"area_filter"`
	LabelFilter *string `json:"label_filter"`
}

// handleListMembers returns the household's memberships. Owner only.
func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	hid, err := householdID(r)
	if err != nil {
		writeBadRequest(w, "invalid household id")
		return
	}
	if !s.requireOwner(w, r, hid) {
		return
	}

	members, err := s.memberships.ListForHousehold(r.Context(), hid)
	if err != nil {
		writeInternalError(w, "failed to list members")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"members": members,
		"count":   len(members),
	})
}

// handleUpsertMember adds a user to the household by email, creating
// the account if the address has never been seen. Owner only.
func (s *Server) handleUpsertMember(w http.ResponseWriter, r *http.Request) {
	hid, err := householdID(r)
	if err != nil {
		writeBadRequest(w, "invalid household id")
		return
	}
	if !s.requireOwner(w, r, hid) {
		return
	}

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if !auth.IsValidEmail(req.Email) {
		writeBadRequest(w, "a valid email is required")
		return
	}

	user, err := s.userByEmail(r.Context(), req.Email)
	if err != nil {
		writeInternalError(w, "failed to resolve user")
		return
	}

	membership := &access.Membership{
		HouseholdID:    hid,
		UserID:         user.ID,
		Role:           access.Role(req.Role),
		AreaFilter:     req.AreaFilter,
		LabelFilterCSV: req.LabelFilter,
	}
	if !membership.Role.Valid() {
		writeBadRequest(w, "role must be OWNER or TENANT")
		return
	}

	if err := s.memberships.Upsert(r.Context(), membership); err != nil {
		writeInternalError(w, "failed to save membership")
		return
	}

	saved, err := s.memberships.Get(r.Context(), hid, user.ID)
	if err != nil {
		writeInternalError(w, "failed to load membership")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// handleUpdateMember replaces a member's role and filters. Owner only.
func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	hid, err := householdID(r)
	if err != nil {
		writeBadRequest(w, "invalid household id")
		return
	}
	uid, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid user id")
		return
	}
	if !s.requireOwner(w, r, hid) {
		return
	}

	if _, err := s.memberships.Get(r.Context(), hid, uid); err != nil {
		if errors.Is(err, access.ErrMembershipNotFound) {
			writeNotFound(w, "membership not found")
			return
		}
		writeInternalError(w, "failed to load membership")
		return
	}

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	membership := &access.Membership{
		HouseholdID:    hid,
		UserID:         uid,
		Role:           access.Role(req.Role),
		AreaFilter:     req.AreaFilter,
		LabelFilterCSV: req.LabelFilter,
	}
	if !membership.Role.Valid() {
		writeBadRequest(w, "role must be OWNER or TENANT")
		return
	}

	if err := s.memberships.Upsert(r.Context(), membership); err != nil {
		writeInternalError(w, "failed to save membership")
		return
	}

	saved, err := s.memberships.Get(r.Context(), hid, uid)
	if err != nil {
		writeInternalError(w, "failed to load membership")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handleDeleteMember removes a member from the household. Owner only.
func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	hid, err := householdID(r)
	if err != nil {
		writeBadRequest(w, "invalid household id")
		return
	}
	uid, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid user id")
		return
	}
	if !s.requireOwner(w, r, hid) {
		return
	}

	if err := s.memberships.Delete(r.Context(), hid, uid); err != nil {
		writeInternalError(w, "failed to delete membership")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
