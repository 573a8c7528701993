package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/convertly/leadscore/internal/domain/model"
	"github.com/convertly/leadscore/internal/domain/schema"
)

// Local is the in-process scorer: a logistic model over normalized features.
// It is synchronous and network-free; the only failure mode left after
// upstream validation is an internal parameter fault, which is fatal to the
// request and never retried.
type Local struct {
	name    string
	version string
	bias    float64
	weights map[string]float64
	scales  map[string]float64
}

// localParams is the JSON shape of a parameter file override.
type localParams struct {
	Name    string             `json:"name"`
	Version string             `json:"version"`
	Bias    float64            `json:"bias"`
	Weights map[string]float64 `json:"weights"`
	Scales  map[string]float64 `json:"scales"`
}

// defaultScale saturates unbounded count fields that have no explicit scale.
const defaultScale = 10.0

// NewLocal creates the in-process scorer with the baked-in parameter set.
func NewLocal() *Local {
	return &Local{
		name:    "lead-conversion-logistic",
		version: "1.0.0",
		bias:    defaultBias,
		weights: defaultWeights(),
		scales:  defaultScales(),
	}
}

// NewLocalFromFile creates the in-process scorer from a JSON parameter file.
func NewLocalFromFile(path string) (*Local, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model parameters: %w", err)
	}
	var p localParams
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse model parameters: %w", err)
	}
	if len(p.Weights) == 0 {
		return nil, fmt.Errorf("%w: parameter file has no weights", ErrInternal)
	}

	l := NewLocal()
	if p.Name != "" {
		l.name = p.Name
	}
	if p.Version != "" {
		l.version = p.Version
	}
	l.bias = p.Bias
	l.weights = p.Weights
	for name, scale := range p.Scales {
		l.scales[name] = scale
	}
	return l, nil
}

// Predict computes the conversion probability for one vector. The sigmoid
// output is always inside (0,1) so the mapper precondition holds by
// construction.
func (l *Local) Predict(_ context.Context, vec schema.FeatureVector) (float64, error) {
	z := l.bias
	for _, spec := range schema.Fields() {
		w, ok := l.weights[spec.Name]
		if !ok {
			continue
		}
		val, _ := vec.Get(spec.Name)
		z += w * l.normalize(spec, val)
	}

	p := 1 / (1 + math.Exp(-z))
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("%w: non-finite model output", ErrInternal)
	}
	return p, nil
}

// normalize maps a raw feature value onto [0,1]. Bounded fields scale
// linearly across their declared range; unbounded fields saturate against a
// characteristic scale so that large magnitudes cannot dominate the sum.
func (l *Local) normalize(spec schema.FieldSpec, val float64) float64 {
	if spec.HasMin && spec.HasMax {
		span := spec.Max - spec.Min
		if span <= 0 {
			return 0
		}
		return (val - spec.Min) / span
	}

	scale, ok := l.scales[spec.Name]
	if !ok || scale <= 0 {
		scale = defaultScale
	}
	if val <= 0 {
		// Unbounded growth rate can be negative; squash symmetrically.
		return val / (math.Abs(val) + scale)
	}
	return val / (val + scale)
}

// Identity names the in-process model.
func (l *Local) Identity() model.ModelIdentity {
	return model.ModelIdentity{Name: l.name, Version: l.version}
}

// FeatureImportances reports the relative weight of every feature: absolute
// model weights normalized to sum to 1. Features are scored over a shared
// [0,1] normalization, so weight magnitude is a fair importance measure.
func (l *Local) FeatureImportances() map[string]float64 {
	total := 0.0
	for _, w := range l.weights {
		total += math.Abs(w)
	}
	if total == 0 {
		return nil
	}
	importances := make(map[string]float64, len(l.weights))
	for name, w := range l.weights {
		importances[name] = math.Abs(w) / total
	}
	return importances
}

// Healthy always holds for the in-process model once constructed.
func (l *Local) Healthy(_ context.Context) bool { return true }

// Baked-in parameters. Weights follow the category emphasis the model was
// trained with: engagement and behavioral signals carry most of the mass,
// product interest and firmographics the remainder.
const defaultBias = -2.4

func defaultWeights() map[string]float64 {
	return map[string]float64{
		// Firmographics
		"company_revenue":        0.35,
		"company_employee_count": 0.25,
		"company_age_years":      0.10,
		"company_funding_total":  0.15,
		"company_growth_rate":    0.30,
		"industry_tech_score":    0.40,
		"geographic_tier":        -0.20,
		"company_public_status":  0.05,
		"parent_company_exists":  0.05,
		"subsidiary_count":       0.05,
		// Engagement
		"website_visits_30d":            0.45,
		"page_views_30d":                0.30,
		"avg_session_duration_sec":      0.20,
		"bounce_rate":                   -0.35,
		"pricing_page_visits":           0.55,
		"demo_page_visits":              0.50,
		"documentation_views":           0.25,
		"email_open_rate":               0.30,
		"email_click_rate":              0.35,
		"emails_received":               0.10,
		"whitepaper_downloads":          0.20,
		"webinar_attendance":            0.20,
		"social_media_engagement":       0.10,
		"customer_success_interactions": 0.15,
		"support_ticket_count":          -0.10,
		// Behavioral
		"days_since_first_touch":           0.10,
		"days_since_last_touch":            -0.30,
		"total_touchpoints":                0.30,
		"multi_channel_engagement":         0.25,
		"decision_maker_contacted":         0.55,
		"champion_identified":              0.50,
		"budget_confirmed":                 0.60,
		"timeline_confirmed":               0.50,
		"competitor_evaluation":            0.10,
		"technical_evaluation_started":     0.40,
		"contract_reviewed":                0.45,
		"security_questionnaire_completed": 0.35,
		"roi_calculator_used":              0.30,
		"custom_demo_requested":            0.40,
		"integration_questions_asked":      0.20,
		// Attribution
		"lead_source_quality":     0.45,
		"attribution_touchpoints": 0.15,
		"paid_channel_source":     0.05,
		"referral_source":         0.25,
		"event_source":            0.10,
		// Product interest
		"product_tier_interest":    0.30,
		"feature_requests_count":   0.15,
		"use_case_alignment":       0.50,
		"integration_requirements": 0.10,
		"deployment_preference":    -0.10,
	}
}

func defaultScales() map[string]float64 {
	return map[string]float64{
		"company_revenue":          10_000_000,
		"company_employee_count":   500,
		"company_age_years":        15,
		"company_funding_total":    20_000_000,
		"company_growth_rate":      0.5,
		"subsidiary_count":         5,
		"website_visits_30d":       50,
		"page_views_30d":           150,
		"avg_session_duration_sec": 300,
		"pricing_page_visits":      10,
		"demo_page_visits":         5,
		"documentation_views":      20,
		"emails_received":          15,
		"whitepaper_downloads":     5,
		"webinar_attendance":       3,
		"social_media_engagement":  20,
		// CS interactions, tickets and the remaining counts saturate at
		// the default scale.
		"days_since_first_touch":      90,
		"days_since_last_touch":       14,
		"total_touchpoints":           30,
		"integration_questions_asked": 8,
		"attribution_touchpoints":     10,
		"feature_requests_count":      5,
		"integration_requirements":    5,
	}
}
