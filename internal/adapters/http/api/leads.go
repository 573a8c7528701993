// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/convertly/leadscore/internal/adapters/repository"
)

const defaultMaxTopLeads = 100

// LeadsHandler serves stored scoring results.
type LeadsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewLeadsHandler creates a new leads handler.
func NewLeadsHandler(deps Dependencies, maxLimit int) *LeadsHandler {
	return &LeadsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleTopLeads handles GET /api/v1/leads/top?limit=N requests.
func (h *LeadsHandler) HandleTopLeads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		limitStr = "10"
	}
	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
		return
	}
	results, err := h.deps.TopLeads(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	items := make([]scoreResponse, len(results))
	for i, res := range results {
		items[i] = toScoreResponse(res)
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleGetLead handles GET /api/v1/leads/{lead_id} requests.
func (h *LeadsHandler) HandleGetLead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	leadID := strings.TrimPrefix(r.URL.Path, "/api/v1/leads/")
	if leadID == "" || strings.Contains(leadID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	res, err := h.deps.Lead(r.Context(), leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, toScoreResponse(res))
}
