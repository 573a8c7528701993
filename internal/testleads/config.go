package testleads

import "time"

// Config holds configuration for the lead scoring test.
type Config struct {
	BaseURL   string        // Base URL of the service
	APIKey    string        // Optional X-API-Key for authenticated routes
	NumLeads  int           // Number of leads to generate and score
	BatchSize int           // Leads per batch request; 0 disables batch runs
	TopN      int           // Number of top leads to fetch afterwards
	Workers   int           // Number of concurrent workers
	Timeout   time.Duration // HTTP request timeout
	LogFile   string        // Log file for test output
	Verbose   bool          // Enable verbose logging
}

// Lead is the wire shape submitted to POST /api/v1/score.
type Lead struct {
	LeadID   string             `json:"lead_id"`
	Features map[string]float64 `json:"features"`
}

// Score is the nested scoring outcome inside a service answer.
type Score struct {
	RawScore float64 `json:"raw_score"`
	Bucket   int     `json:"bucket"`
	Tier     string  `json:"tier"`
}

// Timing carries the request latency inside a service answer.
type Timing struct {
	LatencyMS float64 `json:"latency_ms"`
}

// ScoreResult mirrors the service's scoring answer.
type ScoreResult struct {
	RequestID string `json:"request_id"`
	LeadID    string `json:"lead_id"`
	Score     Score  `json:"score"`
	Timing    Timing `json:"timing"`
}

// batchAnswer mirrors the batch response envelope.
type batchAnswer struct {
	Results []struct {
		Index   int          `json:"index"`
		LeadID  string       `json:"lead_id"`
		Success bool         `json:"success"`
		Result  *ScoreResult `json:"result"`
	} `json:"results"`
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Stats holds test statistics.
type Stats struct {
	LeadsGenerated  int
	LeadsSubmitted  int
	LeadsSuccessful int
	LeadsFailed     int
	BatchesRun      int
	OrderViolations int
	TierMismatches  int
	TopLeadsFetched int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
