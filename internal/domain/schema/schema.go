// Package schema defines the 50-feature lead scoring input schema and its
// validator. The field table is the stable model contract: names, order,
// kinds and numeric ranges must not change without a model version bump.
package schema

// NumFeatures is the fixed dimensionality of the feature vector.
const NumFeatures = 50

// Kind describes how a field's numeric value is interpreted.
type Kind int

const (
	// KindFloat accepts any real value within range.
	KindFloat Kind = iota
	// KindInt requires an integral value within range.
	KindInt
	// KindBinary requires 0 or 1.
	KindBinary
	// KindCategorical requires an integral code within range.
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBinary:
		return "binary"
	case KindCategorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Field categories, used for documentation and the /model/features endpoint.
const (
	CategoryFirmographics   = "firmographics"
	CategoryEngagement      = "engagement"
	CategoryBehavioral      = "behavioral"
	CategoryAttribution     = "attribution"
	CategoryProductInterest = "product_interest"
)

// FieldSpec declares one named feature: its kind, category and inclusive
// numeric bounds. Bounds apply only when the corresponding Has flag is set.
type FieldSpec struct {
	Name     string
	Kind     Kind
	Category string
	Min      float64
	Max      float64
	HasMin   bool
	HasMax   bool
}

func bounded(name string, kind Kind, category string, min, max float64) FieldSpec {
	return FieldSpec{Name: name, Kind: kind, Category: category, Min: min, Max: max, HasMin: true, HasMax: true}
}

func atLeast(name string, kind Kind, category string, min float64) FieldSpec {
	return FieldSpec{Name: name, Kind: kind, Category: category, Min: min, HasMin: true}
}

func unbounded(name string, kind Kind, category string) FieldSpec {
	return FieldSpec{Name: name, Kind: kind, Category: category}
}

func binary(name, category string) FieldSpec {
	return bounded(name, KindBinary, category, 0, 1)
}

// fields is the ordered 50-field table. Vector positions are fixed by this
// order and consumed positionally by every provider.
var fields = [NumFeatures]FieldSpec{
	// Company firmographics (10)
	atLeast("company_revenue", KindFloat, CategoryFirmographics, 0),
	atLeast("company_employee_count", KindInt, CategoryFirmographics, 1),
	atLeast("company_age_years", KindFloat, CategoryFirmographics, 0),
	atLeast("company_funding_total", KindFloat, CategoryFirmographics, 0),
	unbounded("company_growth_rate", KindFloat, CategoryFirmographics),
	bounded("industry_tech_score", KindFloat, CategoryFirmographics, 0, 1),
	bounded("geographic_tier", KindCategorical, CategoryFirmographics, 1, 3),
	binary("company_public_status", CategoryFirmographics),
	binary("parent_company_exists", CategoryFirmographics),
	atLeast("subsidiary_count", KindInt, CategoryFirmographics, 0),

	// Engagement metrics (15)
	atLeast("website_visits_30d", KindInt, CategoryEngagement, 0),
	atLeast("page_views_30d", KindInt, CategoryEngagement, 0),
	atLeast("avg_session_duration_sec", KindFloat, CategoryEngagement, 0),
	bounded("bounce_rate", KindFloat, CategoryEngagement, 0, 1),
	atLeast("pricing_page_visits", KindInt, CategoryEngagement, 0),
	atLeast("demo_page_visits", KindInt, CategoryEngagement, 0),
	atLeast("documentation_views", KindInt, CategoryEngagement, 0),
	bounded("email_open_rate", KindFloat, CategoryEngagement, 0, 1),
	bounded("email_click_rate", KindFloat, CategoryEngagement, 0, 1),
	atLeast("emails_received", KindInt, CategoryEngagement, 0),
	atLeast("whitepaper_downloads", KindInt, CategoryEngagement, 0),
	atLeast("webinar_attendance", KindInt, CategoryEngagement, 0),
	atLeast("social_media_engagement", KindInt, CategoryEngagement, 0),
	atLeast("customer_success_interactions", KindInt, CategoryEngagement, 0),
	atLeast("support_ticket_count", KindInt, CategoryEngagement, 0),

	// Behavioral signals (15)
	atLeast("days_since_first_touch", KindFloat, CategoryBehavioral, 0),
	atLeast("days_since_last_touch", KindFloat, CategoryBehavioral, 0),
	atLeast("total_touchpoints", KindInt, CategoryBehavioral, 1),
	binary("multi_channel_engagement", CategoryBehavioral),
	binary("decision_maker_contacted", CategoryBehavioral),
	binary("champion_identified", CategoryBehavioral),
	binary("budget_confirmed", CategoryBehavioral),
	binary("timeline_confirmed", CategoryBehavioral),
	binary("competitor_evaluation", CategoryBehavioral),
	binary("technical_evaluation_started", CategoryBehavioral),
	binary("contract_reviewed", CategoryBehavioral),
	binary("security_questionnaire_completed", CategoryBehavioral),
	binary("roi_calculator_used", CategoryBehavioral),
	binary("custom_demo_requested", CategoryBehavioral),
	atLeast("integration_questions_asked", KindInt, CategoryBehavioral, 0),

	// Lead source and attribution (5)
	bounded("lead_source_quality", KindFloat, CategoryAttribution, 0, 1),
	atLeast("attribution_touchpoints", KindInt, CategoryAttribution, 1),
	binary("paid_channel_source", CategoryAttribution),
	binary("referral_source", CategoryAttribution),
	binary("event_source", CategoryAttribution),

	// Product interest signals (5)
	bounded("product_tier_interest", KindCategorical, CategoryProductInterest, 1, 3),
	atLeast("feature_requests_count", KindInt, CategoryProductInterest, 0),
	bounded("use_case_alignment", KindFloat, CategoryProductInterest, 0, 1),
	atLeast("integration_requirements", KindInt, CategoryProductInterest, 0),
	bounded("deployment_preference", KindCategorical, CategoryProductInterest, 0, 2),
}

// index maps field name to its vector position.
var index = func() map[string]int {
	m := make(map[string]int, NumFeatures)
	for i, f := range fields {
		m[f.Name] = i
	}
	return m
}()

// Fields returns a copy of the ordered field table.
func Fields() []FieldSpec {
	out := make([]FieldSpec, NumFeatures)
	copy(out, fields[:])
	return out
}

// FieldNames returns the 50 feature names in vector order.
func FieldNames() []string {
	out := make([]string, NumFeatures)
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

// Position returns the vector position of a field name.
func Position(name string) (int, bool) {
	i, ok := index[name]
	return i, ok
}

// FeatureVector is a validated, ordered 50-dimensional input vector.
// Immutable once built; accessors return copies.
type FeatureVector struct {
	values [NumFeatures]float64
}

// Values returns a copy of the ordered feature values.
func (v FeatureVector) Values() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, v.values[:])
	return out
}

// Get returns the value of a named feature.
func (v FeatureVector) Get(name string) (float64, bool) {
	i, ok := index[name]
	if !ok {
		return 0, false
	}
	return v.values[i], true
}

// Map returns the vector as a name-keyed map, for persistence and debugging.
func (v FeatureVector) Map() map[string]float64 {
	out := make(map[string]float64, NumFeatures)
	for i, f := range fields {
		out[f.Name] = v.values[i]
	}
	return out
}
