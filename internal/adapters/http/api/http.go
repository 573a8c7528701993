// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	service "github.com/convertly/leadscore/internal/app"
	"github.com/convertly/leadscore/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Score runs one lead through the scoring pipeline.
	Score(ctx context.Context, req model.ScoringRequest) (model.ScoringResult, error)

	// ScoreBatch scores up to the configured cap of leads concurrently.
	ScoreBatch(ctx context.Context, reqs []model.ScoringRequest) ([]service.BatchItem, error)

	// Read operations expose model and result data.
	ModelIdentity() model.ModelIdentity
	Provider() string
	FeatureImportances() map[string]float64
	Healthy(ctx context.Context) bool
	TopLeads(ctx context.Context, n int) ([]model.ScoringResult, error)
	Lead(ctx context.Context, leadID string) (model.ScoringResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	scoreHandler  *ScoreHandler
	modelHandler  *ModelHandler
	leadsHandler  *LeadsHandler
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	auth          *authMiddleware
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithMaxTopLeadsLimit caps GET /api/v1/leads/top?limit.
func WithMaxTopLeadsLimit(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.leadsHandler.maxLimit = n
		}
	}
}

// WithAPIKeys enables X-API-Key authentication on the scoring routes.
// An empty list leaves them open.
func WithAPIKeys(keys []string) ServerOption {
	return func(s *Server) {
		s.auth = newAuthMiddleware(keys)
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		scoreHandler:  NewScoreHandler(deps),
		modelHandler:  NewModelHandler(deps),
		leadsHandler:  NewLeadsHandler(deps, defaultMaxTopLeads),
		healthHandler: NewHealthHandler(deps),
		statsHandler:  NewStatsHandler(statsProvider),
		auth:          newAuthMiddleware(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	// Open operational routes.
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	// Authenticated scoring and read routes.
	mux.HandleFunc("/api/v1/score", s.guarded(s.scoreHandler.HandleScore, "score"))
	mux.HandleFunc("/api/v1/score/batch", s.guarded(s.scoreHandler.HandleScoreBatch, "score_batch"))
	mux.HandleFunc("/api/v1/model/info", s.guarded(s.modelHandler.HandleInfo, "model_info"))
	mux.HandleFunc("/api/v1/model/features", s.guarded(s.modelHandler.HandleFeatures, "model_features"))
	mux.HandleFunc("/api/v1/leads/top", s.guarded(s.leadsHandler.HandleTopLeads, "leads_top"))
	mux.HandleFunc("/api/v1/leads/", s.guarded(s.leadsHandler.HandleGetLead, "lead"))
}

func (s *Server) guarded(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return MetricsMiddleware(s.auth.wrap(next), endpoint)
}

// scoreBody is the nested scoring outcome: the raw probability with its
// derived bucket and tier. This shape is the stable wire contract.
type scoreBody struct {
	RawScore float64 `json:"raw_score"`
	Bucket   int     `json:"bucket"`
	Tier     string  `json:"tier"`
}

type timingBody struct {
	LatencyMS float64 `json:"latency_ms"`
}

// scoreResponse mirrors the OpenAPI schema for scoring answers.
type scoreResponse struct {
	RequestID string              `json:"request_id"`
	LeadID    string              `json:"lead_id"`
	Model     model.ModelIdentity `json:"model"`
	Score     scoreBody           `json:"score"`
	Timing    timingBody          `json:"timing"`
	ScoredAt  time.Time           `json:"scored_at"`
	Clamped   bool                `json:"clamped,omitempty"`
}

func toScoreResponse(res model.ScoringResult) scoreResponse {
	return scoreResponse{
		RequestID: res.RequestID,
		LeadID:    res.LeadID,
		Model:     res.Model,
		Score: scoreBody{
			RawScore: res.Score.RawScore,
			Bucket:   res.Score.Bucket,
			Tier:     res.Score.Tier,
		},
		Timing:   timingBody{LatencyMS: res.LatencyMS()},
		ScoredAt: res.ScoredAt,
		Clamped:  res.Clamped,
	}
}

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
