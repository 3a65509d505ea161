package api

import (
	"net/http"
	"strconv"

	"github.com/dinodia/dinodia-core/internal/audit"
)

// handleListAudit returns the household's command audit trail. Owner only.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	hid, err := strconv.ParseInt(q.Get("household_id"), 10, 64)
	if err != nil || hid < 1 {
		writeBadRequest(w, "household_id query parameter is required")
		return
	}
	if !s.requireOwner(w, r, hid) {
		return
	}

	filter := audit.Filter{
		HouseholdID: hid,
		Source:      q.Get("source"),
		Outcome:     q.Get("outcome"),
		EntityID:    q.Get("entity_id"),
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v) //nolint:errcheck // repository clamps bad values
	}
	if v := q.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v) //nolint:errcheck // repository clamps bad values
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		writeInternalError(w, "failed to list audit records")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
