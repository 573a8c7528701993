package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gatherNames(t *testing.T) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := GetRegistry().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestRecordPrediction(t *testing.T) {
	RecordPrediction("local", "B", 0.82, 3.4)
	RecordPrediction("local", "B", 0.79, 2.1)

	families := gatherNames(t)
	f, ok := families["leadscore_scoring_predictions_total"]
	if !ok {
		t.Fatal("predictions_total not registered")
	}
	var found bool
	for _, m := range f.GetMetric() {
		labels := map[string]string{}
		for _, l := range m.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		if labels["provider"] == "local" && labels["tier"] == "B" {
			found = true
			if m.GetCounter().GetValue() < 2 {
				t.Errorf("expected at least 2 predictions, got %v", m.GetCounter().GetValue())
			}
		}
	}
	if !found {
		t.Error("no counter sample for provider=local tier=B")
	}
}

func TestRecordPredictionError(t *testing.T) {
	RecordPredictionError("sagemaker", "timeout")

	families := gatherNames(t)
	if _, ok := families["leadscore_scoring_prediction_errors_total"]; !ok {
		t.Fatal("prediction_errors_total not registered")
	}
}

func TestSinkQueueGauges(t *testing.T) {
	UpdateSinkQueueCapacity(100)
	UpdateSinkQueueSize(25, 100)

	families := gatherNames(t)
	size, ok := families["leadscore_scoring_sink_queue_size"]
	if !ok {
		t.Fatal("sink_queue_size not registered")
	}
	if got := size.GetMetric()[0].GetGauge().GetValue(); got != 25 {
		t.Errorf("sink queue size = %v, want 25", got)
	}
	util := families["leadscore_scoring_sink_queue_utilization_ratio"]
	if got := util.GetMetric()[0].GetGauge().GetValue(); got != 0.25 {
		t.Errorf("sink queue utilization = %v, want 0.25", got)
	}
}

func TestConcurrentRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RecordPrediction("azure", "A", 0.91, 12.0)
			RecordBatchSize(10)
			RecordValidationFailure("missing_field")
			RecordSinkWritten()
		}()
	}
	wg.Wait()

	families := gatherNames(t)
	if _, ok := families["leadscore_scoring_batch_size"]; !ok {
		t.Fatal("batch_size not registered")
	}
}

func TestGuardAbsorbsFaults(t *testing.T) {
	// Inconsistent label cardinality panics inside client_golang; the guard
	// must swallow it and count a recorder fault instead.
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("recording panicked through the guard: %v", r)
		}
	}()
	before := recorderFaultCount(t)
	func() {
		defer guard()
		panic("synthetic recorder fault")
	}()
	after := recorderFaultCount(t)
	if after != before+1 {
		t.Errorf("recorder faults = %v, want %v", after, before+1)
	}
}

func recorderFaultCount(t *testing.T) float64 {
	t.Helper()
	families := gatherNames(t)
	for name, f := range families {
		if strings.HasSuffix(name, "recorder_faults_total") {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestCustomManagerRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(
		WithNamespace("test"),
		WithSubsystem("unit"),
		WithPrometheusRegistry(reg),
	)
	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) != 0 {
		// Counters without observations do not appear until used; vectors
		// with no label values gather empty. Nothing should be pre-populated.
		for _, f := range families {
			if len(f.GetMetric()) > 0 && !strings.HasPrefix(f.GetName(), "test_unit_") {
				t.Errorf("unexpected metric family %q", f.GetName())
			}
		}
	}
}
