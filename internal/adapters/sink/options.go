package sink

import "github.com/convertly/leadscore/pkg/logger"

// Option applies a configuration option to the Sink.
type Option func(*Sink)

// WithCapacity bounds the result queue. The bound is fixed for the sink's
// lifetime.
func WithCapacity(capacity int) Option {
	return func(s *Sink) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// WithWorkers sets the number of drain workers.
func WithWorkers(n int) Option {
	return func(s *Sink) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithStore mirrors every drained result into an in-memory store for the
// read endpoints.
func WithStore(store Store) Option {
	return func(s *Sink) {
		s.store = store
	}
}

// WithLogger sets a custom logger for the sink.
func WithLogger(l logger.Logger) Option {
	return func(s *Sink) {
		if l != nil {
			s.logger = l
		}
	}
}
