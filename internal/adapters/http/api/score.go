// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/convertly/leadscore/internal/adapters/provider"
	service "github.com/convertly/leadscore/internal/app"
	"github.com/convertly/leadscore/internal/domain/model"
	"github.com/convertly/leadscore/internal/domain/schema"
)

// ScoreHandler handles single and batch scoring requests.
type ScoreHandler struct {
	deps Dependencies
}

// NewScoreHandler creates a new scoring handler.
func NewScoreHandler(deps Dependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// scoreRequest mirrors the OpenAPI schema for POST /api/v1/score.
type scoreRequest struct {
	LeadID   string             `json:"lead_id"`
	Features map[string]float64 `json:"features"`
}

// batchRequest mirrors the OpenAPI schema for POST /api/v1/score/batch.
type batchRequest struct {
	Leads []scoreRequest `json:"leads"`
}

// batchItemResponse carries one lead's outcome inside a batch answer.
type batchItemResponse struct {
	Index   int            `json:"index"`
	LeadID  string         `json:"lead_id"`
	Success bool           `json:"success"`
	Result  *scoreResponse `json:"result,omitempty"`
	Error   *errorResponse `json:"error,omitempty"`
}

type batchResponse struct {
	Results   []batchItemResponse `json:"results"`
	Total     int                 `json:"total"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

// HandleScore handles POST /api/v1/score requests.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Features == nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing features"))
		return
	}

	res, err := h.deps.Score(r.Context(), model.ScoringRequest{
		LeadID:   req.LeadID,
		Features: req.Features,
	})
	if err != nil {
		writeScoringError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScoreResponse(res))
}

// HandleScoreBatch handles POST /api/v1/score/batch requests.
func (h *ScoreHandler) HandleScoreBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	reqs := make([]model.ScoringRequest, len(req.Leads))
	for i, lead := range req.Leads {
		reqs[i] = model.ScoringRequest{LeadID: lead.LeadID, Features: lead.Features}
	}

	items, err := h.deps.ScoreBatch(r.Context(), reqs)
	if err != nil {
		if errors.Is(err, service.ErrBatchTooLarge) {
			writeError(w, http.StatusBadRequest, "batch_too_large", err)
			return
		}
		writeScoringError(w, err)
		return
	}

	resp := batchResponse{
		Results: make([]batchItemResponse, len(items)),
		Total:   len(items),
	}
	for i, item := range items {
		entry := batchItemResponse{Index: item.Index, LeadID: reqs[i].LeadID}
		if item.Err != nil {
			entry.Error = scoringErrorBody(item.Err)
			resp.Failed++
		} else {
			body := toScoreResponse(item.Result)
			entry.Result = &body
			entry.Success = true
			resp.Succeeded++
		}
		resp.Results[i] = entry
	}
	writeJSON(w, http.StatusOK, resp)
}

// fieldErrorDetail is the wire shape of one validation failure.
type fieldErrorDetail struct {
	Kind  string `json:"kind"`
	Field string `json:"field"`
	Bound string `json:"bound,omitempty"`
}

// writeScoringError maps pipeline errors onto HTTP statuses: validation to
// 422, endpoint faults to 502, everything else to 500.
func writeScoringError(w http.ResponseWriter, err error) {
	status, body := scoringErrorStatus(err)
	writeJSON(w, status, *body)
}

func scoringErrorBody(err error) *errorResponse {
	_, body := scoringErrorStatus(err)
	return body
}

func scoringErrorStatus(err error) (int, *errorResponse) {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		details := make([]fieldErrorDetail, len(verr.Fields))
		for i, f := range verr.Fields {
			details[i] = fieldErrorDetail{Kind: string(f.Kind), Field: f.Field, Bound: f.Bound}
		}
		return http.StatusUnprocessableEntity, &errorResponse{
			Code:    "validation_failed",
			Message: verr.Error(),
			Details: details,
		}
	}

	var eperr *provider.EndpointError
	if errors.As(err, &eperr) {
		return http.StatusBadGateway, &errorResponse{
			Code:    "endpoint_" + string(eperr.Kind),
			Message: eperr.Error(),
		}
	}

	if errors.Is(err, service.ErrNotStarted) {
		return http.StatusServiceUnavailable, &errorResponse{
			Code:    "not_ready",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, &errorResponse{
		Code:    "internal_error",
		Message: err.Error(),
	}
}
