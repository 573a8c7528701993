package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/convertly/leadscore/internal/domain/model"
	"github.com/convertly/leadscore/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultShardCount          = 16
	defaultMetricsSyncInterval = 10 * time.Second
)

// MemStore is a sharded in-memory Store. Writes land on one shard under a
// short lock; reads that span shards (TopN, Count) take each shard lock in
// turn, never all at once.
type MemStore struct {
	shards     []*shard
	shardCount int

	metricsSyncInterval time.Duration
	stop                chan struct{}
	stopOnce            sync.Once
}

type shard struct {
	mu      sync.RWMutex
	results map[string]model.ScoringResult
}

// NewMemStore creates the sharded store and starts its metrics sync loop.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		shardCount:          defaultShardCount,
		metricsSyncInterval: defaultMetricsSyncInterval,
		stop:                make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{results: make(map[string]model.ScoringResult)}
	}

	go s.syncMetrics()
	return s
}

func (s *MemStore) shardFor(leadID string) *shard {
	h := fnv.New32a()
	h.Write([]byte(leadID))
	return s.shards[h.Sum32()%uint32(s.shardCount)]
}

// Save records the latest result for a lead.
func (s *MemStore) Save(_ context.Context, res model.ScoringResult) {
	sh := s.shardFor(res.LeadID)
	sh.mu.Lock()
	sh.results[res.LeadID] = res
	sh.mu.Unlock()
}

// Get returns the latest result for a lead.
func (s *MemStore) Get(_ context.Context, leadID string) (model.ScoringResult, error) {
	sh := s.shardFor(leadID)
	sh.mu.RLock()
	res, ok := sh.results[leadID]
	sh.mu.RUnlock()
	if !ok {
		return model.ScoringResult{}, ErrNotFound
	}
	return res, nil
}

// TopN returns up to n leads ordered by raw score descending. Ties break on
// lead ID so repeated calls over the same state agree.
func (s *MemStore) TopN(_ context.Context, n int) ([]model.ScoringResult, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	all := make([]model.ScoringResult, 0, n)
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, res := range sh.results {
			all = append(all, res)
		}
		sh.mu.RUnlock()
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Score.RawScore != all[j].Score.RawScore {
			return all[i].Score.RawScore > all[j].Score.RawScore
		}
		return all[i].LeadID < all[j].LeadID
	})

	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// Count returns the number of distinct leads tracked.
func (s *MemStore) Count(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.results)
		sh.mu.RUnlock()
	}
	return total
}

// Close stops the metrics sync loop.
func (s *MemStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemStore) syncMetrics() {
	ticker := time.NewTicker(s.metricsSyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			metrics.UpdateRepositoryLeads(s.Count(context.Background()))
		}
	}
}
