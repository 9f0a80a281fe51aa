package metrics

import (
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "blogfreeze"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	stageDuration   *prom.HistogramVec
	stageResults    *prom.CounterVec
	posts           *prom.GaugeVec
	requestDuration *prom.HistogramVec
	requests        *prom.CounterVec
	exportFiles     prom.Counter
	exportBytes     prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages (scan, index, export)",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.posts = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "posts",
			Help:      "Number of indexed posts",
		}, []string{"visibility"})
		pr.requestDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Page render latency by route",
			Buckets:   prom.DefBuckets,
		}, []string{"route"})
		pr.requests = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Served requests by route and status code",
		}, []string{"route", "status"})
		pr.exportFiles = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "export_files_total",
			Help:      "Files written by static exports",
		})
		pr.exportBytes = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "export_bytes_total",
			Help:      "Bytes written by static exports",
		})
		reg.MustRegister(pr.stageDuration, pr.stageResults, pr.posts, pr.requestDuration, pr.requests, pr.exportFiles, pr.exportBytes)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) SetPostCount(total, visible int) {
	if p == nil || p.posts == nil {
		return
	}
	p.posts.WithLabelValues("all").Set(float64(total))
	p.posts.WithLabelValues("visible").Set(float64(visible))
}

func (p *PrometheusRecorder) ObserveRequest(route string, status int, d time.Duration) {
	if p == nil || p.requests == nil {
		return
	}
	p.requestDuration.WithLabelValues(route).Observe(d.Seconds())
	p.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (p *PrometheusRecorder) ObserveExport(files int, bytes int64) {
	if p == nil || p.exportFiles == nil {
		return
	}
	p.exportFiles.Add(float64(files))
	p.exportBytes.Add(float64(bytes))
}
