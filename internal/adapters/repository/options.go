package repository

import "time"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithShardCount sets the number of shards. More shards reduce write
// contention at the cost of slightly slower full scans.
func WithShardCount(n int) Option {
	return func(s *MemStore) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithMetricsSyncInterval sets the interval for background gauge updates.
func WithMetricsSyncInterval(interval time.Duration) Option {
	return func(s *MemStore) {
		if interval > 0 {
			s.metricsSyncInterval = interval
		}
	}
}
