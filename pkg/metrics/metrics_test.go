package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewManagerWithOptions(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewManager(
		WithPrometheusRegistry(registry),
		WithNamespace("testns"),
		WithSubsystem("testsub"),
	)

	if m == nil {
		t.Fatal("manager is nil")
	}
	if m.namespace != "testns" {
		t.Errorf("namespace = %q, want %q", m.namespace, "testns")
	}
	if m.subsystem != "testsub" {
		t.Errorf("subsystem = %q, want %q", m.subsystem, "testsub")
	}
}

func TestIngestionMetrics(t *testing.T) {
	// Free functions write to the global manager; they must not panic.
	RecordRecordIngested()
	RecordRecordDuplicate()
	RecordRecordRejected()
	RecordRankingUpdate()
}

func TestQueueMetrics(t *testing.T) {
	UpdateQueueSize(42)
	UpdateQueueCapacity(100)
	UpdateQueueUtilization(0.42)
	RecordQueueEnqueue()
	RecordQueueDequeue()
	RecordQueueError()
}

func TestWorkerMetrics(t *testing.T) {
	UpdateWorkerCount(8)
	RecordWorkerLatency(1.5)
	RecordWorkerError()
	UpdateTeamCount(54)
}

func TestStoreMetrics(t *testing.T) {
	RecordStoreUpdateLatency(0.2)
	RecordStoreQueryLatency(0.1)
	RecordStoreSnapshotDuration(3.0)
	UpdateStoreSnapshotLastUnix(1700000000)
	IncrementStoreSnapshotCount()
}

func TestAnalysisMetrics(t *testing.T) {
	RecordPrediction("quick")
	RecordPrediction("montecarlo")
	RecordPredictionDuration("montecarlo", 12.5)
	RecordPredictionError()
	RecordSimulationTrials(1000)
	RecordDraftAction("start")
	RecordDraftAction("pick")
	RecordDraftError()
	RecordHonorRollRanking()
}

func TestHTTPMetrics(t *testing.T) {
	RecordHTTPRequest("/ranking", "GET", "200")
	RecordHTTPRequestDuration("/ranking", "GET", "200", 0.8)
	RecordErrorByComponent("http", "client_error")
}

func TestSystemMetrics(t *testing.T) {
	UpdateSystemMemoryUsage(1024 * 1024)
	UpdateSystemGoroutineCount(100)
	RecordSystemGCPauseTime(0.25)
}

func TestGetRegistry(t *testing.T) {
	registry := GetRegistry()
	if registry == nil {
		t.Fatal("registry is nil")
	}

	// The global manager registers into the custom registry; gathering
	// must succeed and produce metric families.
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Error("expected at least one metric family")
	}
}
