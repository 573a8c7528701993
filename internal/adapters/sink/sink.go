// Package sink persists scoring results off the request path. Results enter
// through a bounded, non-blocking queue and a small worker pool drains them
// into a Writer. A full queue drops the newest result rather than stalling a
// scoring request; drops are counted, never fatal.
package sink

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/convertly/leadscore/internal/domain/model"
	"github.com/convertly/leadscore/pkg/logger"
	"github.com/convertly/leadscore/pkg/metrics"
)

// Default sink configuration constants.
const (
	defaultCapacity       = 10000
	defaultWorkers        = 4
	defaultDrainTimeout   = 10 * time.Second
	queueMetricsInterval  = 5 * time.Second
	workerShutdownTimeout = 5 * time.Second
)

// Store receives every drained result in addition to the Writer. The served
// read endpoints sit on top of it.
type Store interface {
	Save(ctx context.Context, res model.ScoringResult)
}

// Sink is the bounded asynchronous persistence pipeline.
type Sink struct {
	results  chan model.ScoringResult
	capacity int
	workers  int
	writer   Writer
	store    Store

	mu     sync.RWMutex
	closed bool

	shutdown chan struct{}
	wg       sync.WaitGroup

	logger logger.Logger
}

// New creates a sink draining into the given writer.
func New(writer Writer, opts ...Option) *Sink {
	s := &Sink{
		capacity: defaultCapacity,
		workers:  defaultWorkers,
		writer:   writer,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("sink"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.results = make(chan model.ScoringResult, s.capacity)

	metrics.UpdateSinkQueueCapacity(s.capacity)
	metrics.UpdateSinkQueueSize(0, s.capacity)
	return s
}

// Enqueue hands one result to the sink without blocking. It reports false
// when the sink is full or closed; the caller must treat that as a counted
// drop, not an error.
func (s *Sink) Enqueue(ctx context.Context, res model.ScoringResult) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		metrics.RecordSinkDropped()
		return false
	}

	select {
	case s.results <- res:
		metrics.UpdateSinkQueueSize(len(s.results), s.capacity)
		return true
	case <-ctx.Done():
		metrics.RecordSinkDropped()
		return false
	default:
		metrics.RecordSinkDropped()
		s.logger.Warn(ctx, "result dropped, queue full",
			logger.String("lead_id", res.LeadID),
			logger.Int("capacity", s.capacity),
		)
		return false
	}
}

// Len returns the number of queued, not yet persisted results.
func (s *Sink) Len() int {
	return len(s.results)
}

// Capacity returns the configured queue bound.
func (s *Sink) Capacity() int {
	return s.capacity
}

// Start launches the worker pool. Workers run until Shutdown or ctx
// cancellation.
func (s *Sink) Start(ctx context.Context) {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.run(ctx, "sink-worker-"+strconv.Itoa(i))
	}

	s.wg.Add(1)
	go s.reportQueueDepth(ctx)
}

func (s *Sink) run(ctx context.Context, name string) {
	defer s.wg.Done()
	log := s.logger.Named(name)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdown:
			// Drain what is already queued before leaving.
			s.drain(ctx, log)
			return
		case res, ok := <-s.results:
			if !ok {
				return
			}
			s.persist(ctx, log, res)
		}
	}
}

func (s *Sink) drain(ctx context.Context, log logger.Logger) {
	deadline := time.Now().Add(workerShutdownTimeout)
	for {
		select {
		case res, ok := <-s.results:
			if !ok {
				return
			}
			s.persist(ctx, log, res)
			if time.Now().After(deadline) {
				return
			}
		default:
			return
		}
	}
}

func (s *Sink) persist(ctx context.Context, log logger.Logger, res model.ScoringResult) {
	if s.store != nil {
		s.store.Save(ctx, res)
	}

	start := time.Now()
	err := s.writer.Write(ctx, res)
	metrics.RecordSinkWriteLatency(float64(time.Since(start).Milliseconds()))
	metrics.UpdateSinkQueueSize(len(s.results), s.capacity)

	if err != nil {
		metrics.RecordSinkWriteError()
		log.Error(ctx, "persisting result failed",
			logger.String("lead_id", res.LeadID),
			logger.String("request_id", res.RequestID),
			logger.Error(err),
		)
		return
	}
	metrics.RecordSinkWritten()
}

func (s *Sink) reportQueueDepth(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(queueMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdown:
			return
		case <-ticker.C:
			metrics.UpdateSinkQueueSize(len(s.results), s.capacity)
		}
	}
}

// Shutdown stops intake, lets workers drain queued results, and closes the
// writer. Safe to call once.
func (s *Sink) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.shutdown)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	drainCtx, cancel := context.WithTimeout(ctx, defaultDrainTimeout)
	defer cancel()

	select {
	case <-done:
	case <-drainCtx.Done():
		s.logger.Warn(ctx, "sink drain timed out",
			logger.Int("remaining", len(s.results)),
		)
	}

	if err := s.writer.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return nil
}
