// Package service provides the core scoring orchestrator that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/convertly/leadscore/internal/adapters/provider"
	"github.com/convertly/leadscore/internal/adapters/repository"
	"github.com/convertly/leadscore/internal/adapters/sink"
	"github.com/convertly/leadscore/internal/domain/model"
	"github.com/convertly/leadscore/internal/domain/schema"
	"github.com/convertly/leadscore/internal/domain/scoring"
	"github.com/convertly/leadscore/pkg/logger"
	"github.com/convertly/leadscore/pkg/metrics"
)

// Service orchestrates one lead through validate, predict, map, record.
type Service struct {
	mu sync.RWMutex

	// Core components
	validator *schema.Validator
	predictor provider.Predictor
	results   repository.Store
	sink      *sink.Sink
	writer    sink.Writer

	// Configuration
	providerSettings provider.Settings
	providerLabel    string
	strictMode       bool
	batchMaxSize     int
	batchConcurrency int
	sinkCapacity     int
	sinkWorkers      int
	shardCount       int

	// State
	started  bool
	sinkStop context.CancelFunc

	// Logging
	logger logger.Logger
}

// BatchItem is the per-lead outcome of a batch request. Exactly one of
// Result and Err is set; Index mirrors the lead's position in the input.
type BatchItem struct {
	Index  int
	Result model.ScoringResult
	Err    error
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		providerSettings: provider.Settings{Provider: provider.NameLocal},
		strictMode:       true,
		batchMaxSize:     100,
		batchConcurrency: runtime.NumCPU() * 2,
		sinkCapacity:     10000,
		sinkWorkers:      4,
		shardCount:       16,
		logger:           nil, // replaced when the service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting lead scoring service...")

	s.validator = schema.NewValidator(schema.WithStrictMode(s.strictMode))

	if s.predictor == nil {
		p, err := provider.New(s.providerSettings)
		if err != nil {
			return fmt.Errorf("resolve provider: %w", err)
		}
		s.predictor = p
	}
	s.providerLabel = strings.ToLower(strings.TrimSpace(s.providerSettings.Provider))
	if s.providerLabel == "" {
		s.providerLabel = provider.NameLocal
	}

	if s.results == nil {
		s.results = repository.NewMemStore(repository.WithShardCount(s.shardCount))
	}
	if s.writer == nil {
		s.writer = sink.NewNoopWriter()
	}

	s.sink = sink.New(s.writer,
		sink.WithCapacity(s.sinkCapacity),
		sink.WithWorkers(s.sinkWorkers),
		sink.WithStore(s.results),
	)

	sinkCtx, cancel := context.WithCancel(context.Background())
	s.sinkStop = cancel
	s.sink.Start(sinkCtx)

	s.started = true
	s.logger.Info(ctx, "lead scoring service started",
		logger.String("provider", s.providerLabel),
		logger.String("model", s.predictor.Identity().Name),
		logger.Int("batch_max_size", s.batchMaxSize),
		logger.Int("sink_capacity", s.sinkCapacity),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping lead scoring service...")

	if s.sink != nil {
		if err := s.sink.Shutdown(ctx); err != nil {
			s.logger.Error(ctx, "sink shutdown failed", logger.Error(err))
		}
	}
	if s.sinkStop != nil {
		s.sinkStop()
	}
	if closer, ok := s.results.(interface{ Close() }); ok {
		closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "lead scoring service stopped")
}

// Score runs one lead through the full pipeline. The returned result is
// already recorded with the metrics recorder and handed to the persistence
// sink; neither can fail the request.
func (s *Service) Score(ctx context.Context, req model.ScoringRequest) (model.ScoringResult, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return model.ScoringResult{}, ErrNotStarted
	}

	start := time.Now()

	vec, err := s.validator.Validate(req.Features)
	if err != nil {
		s.recordValidationFailure(err)
		s.logger.Debug(ctx, "validation rejected lead",
			logger.String("lead_id", req.LeadID),
			logger.Error(err),
		)
		return model.ScoringResult{}, err
	}

	raw, err := s.predictor.Predict(ctx, vec)
	if err != nil {
		s.recordPredictionError(err)
		s.logger.Error(ctx, "prediction failed",
			logger.String("lead_id", req.LeadID),
			logger.String("provider", s.providerLabel),
			logger.Error(err),
		)
		return model.ScoringResult{}, err
	}

	received := raw
	raw, clamped := clampScore(raw)
	if clamped {
		metrics.RecordClampedScore(s.providerLabel)
		s.logger.Warn(ctx, "provider score outside [0,1], clamped",
			logger.String("lead_id", req.LeadID),
			logger.String("provider", s.providerLabel),
			logger.Float64("received_score", received),
			logger.Float64("clamped_score", raw),
		)
	}

	bucket, tier := scoring.Map(raw)
	latency := time.Since(start)

	result := model.ScoringResult{
		RequestID: uuid.NewString(),
		LeadID:    req.LeadID,
		Model:     s.predictor.Identity(),
		Score: model.Score{
			RawScore: raw,
			Bucket:   bucket,
			Tier:     string(tier),
		},
		Latency:  latency,
		ScoredAt: time.Now().UTC(),
		Clamped:  clamped,
	}

	metrics.RecordPrediction(s.providerLabel, result.Score.Tier, raw, result.LatencyMS())
	s.sink.Enqueue(ctx, result)

	s.logger.Debug(ctx, "lead scored",
		logger.String("lead_id", req.LeadID),
		logger.String("request_id", result.RequestID),
		logger.Int("bucket", bucket),
		logger.String("tier", result.Score.Tier),
	)

	return result, nil
}

// ScoreBatch scores up to the configured cap of leads concurrently. Results
// come back in input order; a failed lead occupies its slot with an error
// and never disturbs its neighbors.
func (s *Service) ScoreBatch(ctx context.Context, reqs []model.ScoringRequest) ([]BatchItem, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	if len(reqs) > s.batchMaxSize {
		metrics.RecordBatchRejected()
		return nil, &BatchSizeError{Size: len(reqs), Max: s.batchMaxSize}
	}
	metrics.RecordBatchSize(len(reqs))

	items := make([]BatchItem, len(reqs))

	// No shared context cancellation across elements: one lead's failure
	// must leave the rest untouched.
	var g errgroup.Group
	g.SetLimit(s.batchConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := s.Score(ctx, req)
			items[i] = BatchItem{Index: i, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return items, nil
}

// clampScore pins a raw score into [0,1]. NaN cannot reach here; providers
// reject non-finite scores before returning.
func clampScore(raw float64) (float64, bool) {
	switch {
	case raw < 0:
		return 0, true
	case raw > 1:
		return 1, true
	default:
		return raw, false
	}
}

func (s *Service) recordValidationFailure(err error) {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			metrics.RecordValidationFailure(string(f.Kind))
		}
		return
	}
	metrics.RecordValidationFailure("unknown")
}

func (s *Service) recordPredictionError(err error) {
	var eperr *provider.EndpointError
	if errors.As(err, &eperr) {
		metrics.RecordPredictionError(s.providerLabel, string(eperr.Kind))
		return
	}
	metrics.RecordPredictionError(s.providerLabel, "internal")
}

// ModelIdentity names the active model.
func (s *Service) ModelIdentity() model.ModelIdentity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.predictor == nil {
		return model.ModelIdentity{}
	}
	return s.predictor.Identity()
}

// Provider returns the active provider label.
func (s *Service) Provider() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.providerLabel
}

// FeatureImportances reports the active model's relative feature weights.
// Remote providers do not expose their internals; the answer is nil then.
func (s *Service) FeatureImportances() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ip, ok := s.predictor.(interface{ FeatureImportances() map[string]float64 }); ok {
		return ip.FeatureImportances()
	}
	return nil
}

// Healthy reports whether the active provider can serve.
func (s *Service) Healthy(ctx context.Context) bool {
	s.mu.RLock()
	started := s.started
	p := s.predictor
	s.mu.RUnlock()
	return started && p.Healthy(ctx)
}

// TopLeads returns up to n leads ordered by raw score descending.
func (s *Service) TopLeads(ctx context.Context, n int) ([]model.ScoringResult, error) {
	s.mu.RLock()
	store := s.results
	s.mu.RUnlock()
	if store == nil {
		return nil, ErrNotStarted
	}
	return store.TopN(ctx, n)
}

// Lead returns the latest result for one lead.
func (s *Service) Lead(ctx context.Context, leadID string) (model.ScoringResult, error) {
	s.mu.RLock()
	store := s.results
	s.mu.RUnlock()
	if store == nil {
		return model.ScoringResult{}, ErrNotStarted
	}
	return store.Get(ctx, leadID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":           s.started,
		"provider":          s.providerLabel,
		"batch_max_size":    s.batchMaxSize,
		"batch_concurrency": s.batchConcurrency,
		"strict_validation": s.strictMode,
	}

	if s.started {
		stats["sink_queue_length"] = s.sink.Len()
		stats["sink_queue_capacity"] = s.sink.Capacity()
		stats["tracked_leads"] = s.results.Count(ctx)
		stats["model"] = s.predictor.Identity()

		metrics.UpdateSinkQueueSize(s.sink.Len(), s.sink.Capacity())
		metrics.UpdateRepositoryLeads(s.results.Count(ctx))
	}

	return stats
}

// SystemSnapshot pushes current process gauges to the metrics recorder.
func SystemSnapshot() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
