// Package model contains domain models passed between layers.
package model

import "time"

// ScoringRequest is a single lead scoring request. LeadID is caller-supplied
// and opaque; it is used only for correlation and never checked for
// uniqueness.
type ScoringRequest struct {
	LeadID   string             `json:"lead_id"`
	Features map[string]float64 `json:"features"`
}

// ModelIdentity names the model that produced a score.
type ModelIdentity struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Score is the derived, immutable scoring outcome: the raw conversion
// probability plus its discrete bucket and letter tier.
type Score struct {
	RawScore float64 `json:"raw_score"`
	Bucket   int     `json:"bucket"`
	Tier     string  `json:"tier"`
}

// ScoringResult is the terminal record of a completed scoring request.
// It is handed to the metrics recorder and persistence sink by value; each
// receives an independent read-only copy.
type ScoringResult struct {
	RequestID string        `json:"request_id"`
	LeadID    string        `json:"lead_id"`
	Model     ModelIdentity `json:"model"`
	Score     Score         `json:"score"`
	Latency   time.Duration `json:"-"`
	ScoredAt  time.Time     `json:"scored_at"`

	// Clamped marks a provider protocol violation: the raw score arrived
	// outside [0,1] and was clamped before mapping.
	Clamped bool `json:"clamped,omitempty"`
}

// LatencyMS reports the request latency in milliseconds for wire shapes.
func (r ScoringResult) LatencyMS() float64 {
	return float64(r.Latency.Microseconds()) / 1000.0
}
