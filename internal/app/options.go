package service

import (
	"github.com/convertly/leadscore/internal/adapters/provider"
	"github.com/convertly/leadscore/internal/adapters/repository"
	"github.com/convertly/leadscore/internal/adapters/sink"
	"github.com/convertly/leadscore/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithProviderSettings selects and configures the inference provider.
func WithProviderSettings(settings provider.Settings) Option {
	return func(s *Service) {
		s.providerSettings = settings
	}
}

// WithPredictor injects a ready predictor, bypassing the provider factory.
func WithPredictor(p provider.Predictor) Option {
	return func(s *Service) {
		if p != nil {
			s.predictor = p
		}
	}
}

// WithStrictValidation toggles rejection of unknown feature fields.
func WithStrictValidation(strict bool) Option {
	return func(s *Service) {
		s.strictMode = strict
	}
}

// WithBatchMaxSize caps the number of leads in one batch request.
func WithBatchMaxSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchMaxSize = n
		}
	}
}

// WithBatchConcurrency bounds concurrently scored leads per batch.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// WithSinkCapacity bounds the asynchronous persistence queue.
func WithSinkCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sinkCapacity = n
		}
	}
}

// WithSinkWorkers sets the number of persistence workers.
func WithSinkWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sinkWorkers = n
		}
	}
}

// WithWriter selects the persistence backend for scored results.
func WithWriter(w sink.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.writer = w
		}
	}
}

// WithResultStore injects a prebuilt result store.
func WithResultStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.results = store
		}
	}
}

// WithShardCount configures the default result store's shard count.
func WithShardCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
