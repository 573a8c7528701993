// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/convertly/leadscore/internal/domain/model"
	"github.com/convertly/leadscore/internal/domain/schema"
	"github.com/convertly/leadscore/internal/domain/scoring"
)

// ModelHandler serves model metadata.
type ModelHandler struct {
	deps Dependencies
}

// NewModelHandler creates a new model metadata handler.
func NewModelHandler(deps Dependencies) *ModelHandler {
	return &ModelHandler{deps: deps}
}

type modelInfoResponse struct {
	Provider string                  `json:"provider"`
	Model    model.ModelIdentity     `json:"model"`
	Features int                     `json:"feature_count"`
	Tiers    map[scoring.Tier]string `json:"tiers"`
}

// HandleInfo handles GET /api/v1/model/info requests.
func (h *ModelHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, modelInfoResponse{
		Provider: h.deps.Provider(),
		Model:    h.deps.ModelIdentity(),
		Features: schema.NumFeatures,
		Tiers:    scoring.TierDefinitions(),
	})
}

type featureResponse struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Category string   `json:"category"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	// Importance is the model's relative weight for this feature,
	// normalized to sum to 1. Absent for remote providers.
	Importance *float64 `json:"importance,omitempty"`
}

// HandleFeatures handles GET /api/v1/model/features requests. The answer is
// the full ordered feature contract, usable to build a valid payload.
func (h *ModelHandler) HandleFeatures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	importances := h.deps.FeatureImportances()
	specs := schema.Fields()
	features := make([]featureResponse, len(specs))
	for i, spec := range specs {
		f := featureResponse{
			Name:     spec.Name,
			Kind:     spec.Kind.String(),
			Category: spec.Category,
		}
		if spec.HasMin {
			min := spec.Min
			f.Min = &min
		}
		if spec.HasMax {
			max := spec.Max
			f.Max = &max
		}
		if imp, ok := importances[spec.Name]; ok {
			f.Importance = &imp
		}
		features[i] = f
	}
	writeJSON(w, http.StatusOK, features)
}
