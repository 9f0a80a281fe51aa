package metrics

import (
	"errors"
	"testing"
	"time"
)

type testRecorder struct {
	stageDurations map[string]int
	stageResults   map[string]map[ResultLabel]int
	requests       map[string]int
	exportFiles    int
	exportBytes    int64
	total, visible int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{stageDurations: map[string]int{}, stageResults: map[string]map[ResultLabel]int{}, requests: map[string]int{}}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.stageDurations[stage]++
}
func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}
func (t *testRecorder) SetPostCount(total, visible int) { t.total, t.visible = total, visible }
func (t *testRecorder) ObserveRequest(route string, _ int, _ time.Duration) {
	t.requests[route]++
}
func (t *testRecorder) ObserveExport(files int, bytes int64) {
	t.exportFiles += files
	t.exportBytes += bytes
}

func TestStage_RecordsDurationAndResult(t *testing.T) {
	rec := newTestRecorder()

	if err := Stage(rec, StageScan, func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	boom := errors.New("boom")
	if err := Stage(rec, StageScan, func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected stage error to propagate, got %v", err)
	}

	if rec.stageDurations[StageScan] != 2 {
		t.Fatalf("expected 2 durations, got %d", rec.stageDurations[StageScan])
	}
	if rec.stageResults[StageScan][ResultSuccess] != 1 || rec.stageResults[StageScan][ResultFailed] != 1 {
		t.Fatalf("unexpected results: %v", rec.stageResults[StageScan])
	}
}

func TestNoopRecorder_SatisfiesRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveRequest("/", 200, time.Millisecond)
	r.ObserveExport(1, 1)
	if err := Stage(r, StageExport, func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
