package testleads

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/convertly/leadscore/internal/domain/scoring"
	"github.com/convertly/leadscore/pkg/logger"
)

// Runner configuration constants.
const (
	percentageMultiplier = 100
)

// Run executes the complete lead scoring test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting lead scoring test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("leads", config.NumLeads),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
	)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate leads
	leads := generateLeads(ctx, config, stats)

	// Step 3: Score leads one by one, concurrently
	if err := submitLeads(ctx, config, leads, stats); err != nil {
		return fmt.Errorf("lead submission failed: %w", err)
	}

	// Step 4: Run batch requests and check result ordering
	if config.BatchSize > 0 {
		if err := submitBatches(ctx, config, leads, stats); err != nil {
			return fmt.Errorf("batch submission failed: %w", err)
		}
	}

	// Step 5: Fetch the top leads
	if err := fetchTopLeads(ctx, config, stats); err != nil {
		return fmt.Errorf("top leads retrieval failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if stats.TierMismatches > 0 || stats.OrderViolations > 0 {
		return fmt.Errorf("verification failed: %d tier mismatches, %d order violations",
			stats.TierMismatches, stats.OrderViolations)
	}

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout, config.APIKey)
	resp, err := client.Get(config.BaseURL + "/healthz")
	if err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	body, _ := readResponseBody(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service unhealthy: %d %s", resp.StatusCode, string(body))
	}
	return nil
}

// submitLeads scores every lead through the single endpoint with a worker
// pool, verifying each answer against the published tier boundaries.
func submitLeads(ctx context.Context, config *Config, leads []Lead, stats *Stats) error {
	log.Printf("submitting %d leads with %d workers...", len(leads), config.Workers)

	client := newHTTPClient(config.Timeout, config.APIKey)
	url := config.BaseURL + "/api/v1/score"

	var (
		successful     int64
		failed         int64
		tierMismatches int64
	)

	leadChan := make(chan Lead, config.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for lead := range leadChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				resp, err := client.Post(url, lead)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				body, err := readResponseBody(resp)
				if err != nil || resp.StatusCode != http.StatusOK {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Printf("lead %s rejected: %d %s", lead.LeadID, resp.StatusCode, string(body))
					}
					continue
				}

				var result ScoreResult
				if err := json.Unmarshal(body, &result); err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				if !consistent(result) {
					atomic.AddInt64(&tierMismatches, 1)
					log.Printf("tier mismatch for lead %s: raw=%f bucket=%d tier=%s",
						lead.LeadID, result.Score.RawScore, result.Score.Bucket, result.Score.Tier)
				}
				atomic.AddInt64(&successful, 1)
			}
		}()
	}

	for _, lead := range leads {
		leadChan <- lead
	}
	close(leadChan)
	wg.Wait()

	stats.LeadsSubmitted = len(leads)
	stats.LeadsSuccessful = int(successful)
	stats.LeadsFailed = int(failed)
	stats.TierMismatches += int(tierMismatches)
	return nil
}

// submitBatches re-scores the generated leads through the batch endpoint and
// checks that results come back in input order.
func submitBatches(ctx context.Context, config *Config, leads []Lead, stats *Stats) error {
	client := newHTTPClient(config.Timeout, config.APIKey)
	url := config.BaseURL + "/api/v1/score/batch"

	for start := 0; start < len(leads); start += config.BatchSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		end := start + config.BatchSize
		if end > len(leads) {
			end = len(leads)
		}
		chunk := leads[start:end]

		resp, err := client.Post(url, map[string][]Lead{"leads": chunk})
		if err != nil {
			return fmt.Errorf("batch request failed: %w", err)
		}
		body, err := readResponseBody(resp)
		if err != nil || resp.StatusCode != http.StatusOK {
			return fmt.Errorf("batch rejected: %d %s", resp.StatusCode, string(body))
		}

		var answer batchAnswer
		if err := json.Unmarshal(body, &answer); err != nil {
			return fmt.Errorf("batch answer unreadable: %w", err)
		}
		stats.BatchesRun++

		if answer.Total != len(chunk) {
			stats.OrderViolations++
			continue
		}
		for i, item := range answer.Results {
			if item.Index != i || item.LeadID != chunk[i].LeadID {
				stats.OrderViolations++
				log.Printf("order violation in batch starting at %d: position %d holds %s",
					start, i, item.LeadID)
			}
			if item.Success && item.Result != nil && !consistent(*item.Result) {
				stats.TierMismatches++
			}
		}
	}
	return nil
}

// fetchTopLeads pulls the ranked read endpoint and checks ordering.
func fetchTopLeads(ctx context.Context, config *Config, stats *Stats) error {
	logger.Get().Info(ctx, "fetching top leads", logger.Int("topN", config.TopN))

	client := newHTTPClient(config.Timeout, config.APIKey)
	resp, err := client.Get(fmt.Sprintf("%s/api/v1/leads/top?limit=%d", config.BaseURL, config.TopN))
	if err != nil {
		return fmt.Errorf("top leads request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil || resp.StatusCode != http.StatusOK {
		return fmt.Errorf("top leads rejected: %d %s", resp.StatusCode, string(body))
	}

	var results []ScoreResult
	if err := json.Unmarshal(body, &results); err != nil {
		return fmt.Errorf("top leads answer unreadable: %w", err)
	}
	stats.TopLeadsFetched = len(results)

	for i := 1; i < len(results); i++ {
		if results[i].Score.RawScore > results[i-1].Score.RawScore {
			stats.OrderViolations++
			log.Printf("top leads out of order at position %d", i)
		}
	}
	return nil
}

// consistent re-derives the bucket and tier from the raw score and compares.
func consistent(result ScoreResult) bool {
	bucket, tier := scoring.Map(result.Score.RawScore)
	return bucket == result.Score.Bucket && string(tier) == result.Score.Tier
}

// displayFinalStats prints the test summary.
func displayFinalStats(stats *Stats) {
	successRate := 0.0
	if stats.LeadsSubmitted > 0 {
		successRate = float64(stats.LeadsSuccessful) / float64(stats.LeadsSubmitted) * percentageMultiplier
	}

	log.Printf("==== test summary ====")
	log.Printf("leads generated:   %d", stats.LeadsGenerated)
	log.Printf("leads submitted:   %d", stats.LeadsSubmitted)
	log.Printf("leads successful:  %d (%.1f%%)", stats.LeadsSuccessful, successRate)
	log.Printf("leads failed:      %d", stats.LeadsFailed)
	log.Printf("batches run:       %d", stats.BatchesRun)
	log.Printf("tier mismatches:   %d", stats.TierMismatches)
	log.Printf("order violations:  %d", stats.OrderViolations)
	log.Printf("top leads fetched: %d", stats.TopLeadsFetched)
	log.Printf("duration:          %s", stats.Duration)
}
