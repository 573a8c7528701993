package schema

// Example returns a complete, in-range 50-feature input. It is the canonical
// sample lead used in documentation and tests.
func Example() map[string]float64 {
	return map[string]float64{
		// Firmographics
		"company_revenue":        5000000,
		"company_employee_count": 250,
		"company_age_years":      8.5,
		"company_funding_total":  12000000,
		"company_growth_rate":    0.35,
		"industry_tech_score":    0.85,
		"geographic_tier":        1,
		"company_public_status":  0,
		"parent_company_exists":  1,
		"subsidiary_count":       3,
		// Engagement
		"website_visits_30d":            42,
		"page_views_30d":                156,
		"avg_session_duration_sec":      245.3,
		"bounce_rate":                   0.32,
		"pricing_page_visits":           8,
		"demo_page_visits":              3,
		"documentation_views":           15,
		"email_open_rate":               0.68,
		"email_click_rate":              0.42,
		"emails_received":               12,
		"whitepaper_downloads":          2,
		"webinar_attendance":            1,
		"social_media_engagement":       8,
		"customer_success_interactions": 3,
		"support_ticket_count":          1,
		// Behavioral
		"days_since_first_touch":           45.0,
		"days_since_last_touch":            2.0,
		"total_touchpoints":                28,
		"multi_channel_engagement":         1,
		"decision_maker_contacted":         1,
		"champion_identified":              1,
		"budget_confirmed":                 1,
		"timeline_confirmed":               1,
		"competitor_evaluation":            1,
		"technical_evaluation_started":     1,
		"contract_reviewed":                0,
		"security_questionnaire_completed": 1,
		"roi_calculator_used":              1,
		"custom_demo_requested":            1,
		"integration_questions_asked":      5,
		// Attribution
		"lead_source_quality":     0.9,
		"attribution_touchpoints": 8,
		"paid_channel_source":     1,
		"referral_source":         0,
		"event_source":            1,
		// Product interest
		"product_tier_interest":    2,
		"feature_requests_count":   3,
		"use_case_alignment":       0.88,
		"integration_requirements": 4,
		"deployment_preference":    0,
	}
}
