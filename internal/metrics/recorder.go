package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Pipeline stage names.
const (
	StageScan   = "scan"
	StageIndex  = "index"
	StageExport = "export"
)

// Recorder defines observability hooks for the content pipeline and the page
// server. All methods must be safe to call on a NoopRecorder, which allows
// optional injection.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	SetPostCount(total, visible int)
	ObserveRequest(route string, status int, d time.Duration)
	ObserveExport(files int, bytes int64)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) SetPostCount(int, int)                      {}
func (NoopRecorder) ObserveRequest(string, int, time.Duration)  {}
func (NoopRecorder) ObserveExport(int, int64)                   {}

// Stage times fn as stage and counts its result.
func Stage(r Recorder, stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.ObserveStageDuration(stage, time.Since(start))
	if err != nil {
		r.IncStageResult(stage, ResultFailed)
		return err
	}
	r.IncStageResult(stage, ResultSuccess)
	return nil
}
