package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/convertly/leadscore/internal/adapters/provider"
	"github.com/convertly/leadscore/internal/adapters/sink"
	"github.com/convertly/leadscore/internal/domain/model"
	"github.com/convertly/leadscore/internal/domain/schema"
	"github.com/convertly/leadscore/pkg/logger"
)

// stubPredictor derives the score from the vector itself so concurrent
// batches stay deterministic: raw = subsidiary_count / 10. A vector with
// pricing_page_visits == 99 fails with an endpoint error.
type stubPredictor struct{}

func (stubPredictor) Predict(_ context.Context, vec schema.FeatureVector) (float64, error) {
	if v, _ := vec.Get("pricing_page_visits"); v == 99 {
		return 0, &provider.EndpointError{
			Provider: "stub",
			Kind:     provider.Unavailable,
			Err:      errors.New("stub endpoint down"),
		}
	}
	v, _ := vec.Get("subsidiary_count")
	return v / 10.0, nil
}

func (stubPredictor) Identity() model.ModelIdentity {
	return model.ModelIdentity{Name: "stub-model", Version: "test"}
}

func (stubPredictor) Healthy(context.Context) bool { return true }

// fixedPredictor always returns one raw score.
type fixedPredictor struct{ raw float64 }

func (p fixedPredictor) Predict(context.Context, schema.FeatureVector) (float64, error) {
	return p.raw, nil
}

func (fixedPredictor) Identity() model.ModelIdentity {
	return model.ModelIdentity{Name: "fixed-model", Version: "test"}
}

func (fixedPredictor) Healthy(context.Context) bool { return true }

// recordingLogger captures warn entries so tests can inspect their fields.
type recordingLogger struct {
	mu    sync.Mutex
	warns []map[string]any
}

func (l *recordingLogger) Debug(context.Context, string, ...logger.Field) {}
func (l *recordingLogger) Info(context.Context, string, ...logger.Field)  {}
func (l *recordingLogger) Error(context.Context, string, ...logger.Field) {}
func (l *recordingLogger) Named(string) logger.Logger                     { return l }

func (l *recordingLogger) Warn(_ context.Context, _ string, fields ...logger.Field) {
	entry := make(map[string]any, len(fields))
	for _, f := range fields {
		entry[f.Key] = f.Value
	}
	l.mu.Lock()
	l.warns = append(l.warns, entry)
	l.mu.Unlock()
}

func (l *recordingLogger) warnField(key string) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, entry := range l.warns {
		if v, ok := entry[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// failingWriter breaks every persistence attempt.
type failingWriter struct{}

func (failingWriter) Write(context.Context, model.ScoringResult) error {
	return errors.New("storage offline")
}

func (failingWriter) Close() error { return nil }

func leadRequest(leadID string, mutate func(map[string]float64)) model.ScoringRequest {
	features := schema.Example()
	if mutate != nil {
		mutate(features)
	}
	return model.ScoringRequest{LeadID: leadID, Features: features}
}

func startService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	s := New(opts...)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func TestServiceScore(t *testing.T) {
	Convey("Given a started service with a deterministic predictor", t, func() {
		s := startService(t, WithPredictor(stubPredictor{}))
		ctx := context.Background()

		Convey("A valid lead produces a fully populated result", func() {
			req := leadRequest("lead-1", func(f map[string]float64) {
				f["subsidiary_count"] = 5 // raw 0.5
			})
			res, err := s.Score(ctx, req)
			So(err, ShouldBeNil)
			So(res.LeadID, ShouldEqual, "lead-1")
			So(res.Score.RawScore, ShouldEqual, 0.5)
			So(res.Score.Bucket, ShouldEqual, 3)
			So(res.Score.Tier, ShouldEqual, "C")
			So(res.Model.Name, ShouldEqual, "stub-model")
			So(res.ScoredAt.IsZero(), ShouldBeFalse)
			So(res.Clamped, ShouldBeFalse)

			_, err = uuid.Parse(res.RequestID)
			So(err, ShouldBeNil)
		})

		Convey("Each request gets a distinct request ID", func() {
			req := leadRequest("lead-1", nil)
			first, err := s.Score(ctx, req)
			So(err, ShouldBeNil)
			second, err := s.Score(ctx, req)
			So(err, ShouldBeNil)
			So(first.RequestID, ShouldNotEqual, second.RequestID)
		})

		Convey("An invalid lead is rejected with the aggregated field errors", func() {
			req := leadRequest("lead-bad", func(f map[string]float64) {
				delete(f, "company_revenue")
				f["bounce_rate"] = 2.5
			})
			_, err := s.Score(ctx, req)
			So(errors.Is(err, schema.ErrValidation), ShouldBeTrue)

			var verr *schema.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(len(verr.Fields), ShouldEqual, 2)
		})

		Convey("A provider failure surfaces as an endpoint error", func() {
			req := leadRequest("lead-down", func(f map[string]float64) {
				f["pricing_page_visits"] = 99
			})
			_, err := s.Score(ctx, req)
			So(errors.Is(err, provider.ErrEndpoint), ShouldBeTrue)
		})
	})

	Convey("Given a service whose provider misbehaves on range", t, func() {
		ctx := context.Background()

		Convey("A score above 1 is clamped and flagged", func() {
			rec := &recordingLogger{}
			s := startService(t, WithPredictor(fixedPredictor{raw: 1.7}), WithLogger(rec))
			res, err := s.Score(ctx, leadRequest("lead-high", nil))
			So(err, ShouldBeNil)
			So(res.Score.RawScore, ShouldEqual, 1.0)
			So(res.Score.Bucket, ShouldEqual, 5)
			So(res.Score.Tier, ShouldEqual, "A")
			So(res.Clamped, ShouldBeTrue)

			Convey("And the warning keeps the offending value", func() {
				received, ok := rec.warnField("received_score")
				So(ok, ShouldBeTrue)
				So(received, ShouldEqual, 1.7)
				clamped, ok := rec.warnField("clamped_score")
				So(ok, ShouldBeTrue)
				So(clamped, ShouldEqual, 1.0)
			})
		})

		Convey("A negative score is clamped to the bottom bucket", func() {
			s := startService(t, WithPredictor(fixedPredictor{raw: -0.3}))
			res, err := s.Score(ctx, leadRequest("lead-low", nil))
			So(err, ShouldBeNil)
			So(res.Score.RawScore, ShouldEqual, 0.0)
			So(res.Score.Bucket, ShouldEqual, 1)
			So(res.Score.Tier, ShouldEqual, "E")
			So(res.Clamped, ShouldBeTrue)
		})
	})

	Convey("A stopped service rejects scoring", t, func() {
		s := New(WithPredictor(stubPredictor{}))
		_, err := s.Score(context.Background(), leadRequest("lead-1", nil))
		So(errors.Is(err, ErrNotStarted), ShouldBeTrue)
	})
}

func TestServiceScoreBatch(t *testing.T) {
	Convey("Given a started service", t, func() {
		s := startService(t,
			WithPredictor(stubPredictor{}),
			WithBatchMaxSize(100),
			WithBatchConcurrency(4),
		)
		ctx := context.Background()

		Convey("Results come back in input order with failures isolated", func() {
			reqs := []model.ScoringRequest{
				leadRequest("lead-a", func(f map[string]float64) { f["subsidiary_count"] = 1 }),
				leadRequest("lead-b", func(f map[string]float64) { f["pricing_page_visits"] = 99 }),
				leadRequest("lead-c", func(f map[string]float64) { f["subsidiary_count"] = 7 }),
			}

			items, err := s.ScoreBatch(ctx, reqs)
			So(err, ShouldBeNil)
			So(items, ShouldHaveLength, 3)

			So(items[0].Err, ShouldBeNil)
			So(items[0].Result.LeadID, ShouldEqual, "lead-a")
			So(items[0].Result.Score.RawScore, ShouldEqual, 0.1)

			So(items[1].Err, ShouldNotBeNil)
			So(errors.Is(items[1].Err, provider.ErrEndpoint), ShouldBeTrue)

			So(items[2].Err, ShouldBeNil)
			So(items[2].Result.LeadID, ShouldEqual, "lead-c")
			So(items[2].Result.Score.RawScore, ShouldEqual, 0.7)
		})

		Convey("A validation failure in one element leaves the rest scored", func() {
			reqs := []model.ScoringRequest{
				leadRequest("lead-ok", nil),
				leadRequest("lead-broken", func(f map[string]float64) { delete(f, "bounce_rate") }),
			}

			items, err := s.ScoreBatch(ctx, reqs)
			So(err, ShouldBeNil)
			So(items[0].Err, ShouldBeNil)
			So(errors.Is(items[1].Err, schema.ErrValidation), ShouldBeTrue)
		})

		Convey("A batch at the cap is accepted", func() {
			reqs := make([]model.ScoringRequest, 100)
			for i := range reqs {
				reqs[i] = leadRequest(fmt.Sprintf("lead-%d", i), nil)
			}
			items, err := s.ScoreBatch(ctx, reqs)
			So(err, ShouldBeNil)
			So(items, ShouldHaveLength, 100)
			for i, item := range items {
				So(item.Err, ShouldBeNil)
				So(item.Result.LeadID, ShouldEqual, fmt.Sprintf("lead-%d", i))
			}
		})

		Convey("A batch above the cap is rejected wholesale", func() {
			reqs := make([]model.ScoringRequest, 101)
			for i := range reqs {
				reqs[i] = leadRequest(fmt.Sprintf("lead-%d", i), nil)
			}
			items, err := s.ScoreBatch(ctx, reqs)
			So(items, ShouldBeNil)
			So(errors.Is(err, ErrBatchTooLarge), ShouldBeTrue)

			var berr *BatchSizeError
			So(errors.As(err, &berr), ShouldBeTrue)
			So(berr.Size, ShouldEqual, 101)
			So(berr.Max, ShouldEqual, 100)
		})

		Convey("An empty batch is a no-op", func() {
			items, err := s.ScoreBatch(ctx, nil)
			So(err, ShouldBeNil)
			So(items, ShouldHaveLength, 0)
		})
	})
}

func TestServiceReadEndpointsAndStats(t *testing.T) {
	Convey("Given a service that has scored some leads", t, func() {
		s := startService(t, WithPredictor(stubPredictor{}), WithSinkWorkers(2))
		ctx := context.Background()

		for i := 1; i <= 3; i++ {
			count := i
			_, err := s.Score(ctx, leadRequest(fmt.Sprintf("lead-%d", count),
				func(f map[string]float64) { f["subsidiary_count"] = float64(count) }))
			So(err, ShouldBeNil)
		}

		// Results land through the asynchronous sink.
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if _, err := s.Lead(ctx, "lead-3"); err == nil {
				break
			}
			time.Sleep(5 * time.Millisecond)
		}

		Convey("Lead returns the latest result", func() {
			res, err := s.Lead(ctx, "lead-3")
			So(err, ShouldBeNil)
			So(res.Score.RawScore, ShouldEqual, 0.3)
		})

		Convey("TopLeads orders by raw score descending", func() {
			top, err := s.TopLeads(ctx, 2)
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 2)
			So(top[0].LeadID, ShouldEqual, "lead-3")
			So(top[1].LeadID, ShouldEqual, "lead-2")
		})

		Convey("GetStats reflects the running pipeline", func() {
			stats := s.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["provider"], ShouldEqual, "local")
			So(stats["batch_max_size"], ShouldEqual, 100)
		})

		Convey("Healthy follows the predictor", func() {
			So(s.Healthy(ctx), ShouldBeTrue)
		})
	})
}

func TestServiceTelemetryIsolation(t *testing.T) {
	Convey("Given a service whose persistence writer always fails", t, func() {
		s := startService(t,
			WithPredictor(stubPredictor{}),
			WithWriter(failingWriter{}),
		)
		ctx := context.Background()

		Convey("Scoring still succeeds", func() {
			res, err := s.Score(ctx, leadRequest("lead-1", nil))
			So(err, ShouldBeNil)
			So(res.RequestID, ShouldNotBeEmpty)
		})
	})

	Convey("Given a sink with no room at all", t, func() {
		s := startService(t,
			WithPredictor(stubPredictor{}),
			WithSinkCapacity(1),
			WithSinkWorkers(1),
		)
		ctx := context.Background()

		Convey("A burst of requests never blocks on the queue", func() {
			var wg sync.WaitGroup
			errs := make([]error, 50)
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = s.Score(ctx, leadRequest(fmt.Sprintf("lead-%d", i), nil))
				}(i)
			}
			wg.Wait()
			for _, err := range errs {
				So(err, ShouldBeNil)
			}
		})
	})
}

var _ sink.Writer = failingWriter{}
