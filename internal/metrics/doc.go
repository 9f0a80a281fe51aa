// Package metrics records pipeline and page-server metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so nothing needs nil checks:
//
//	recorder := metrics.Recorder(metrics.NoopRecorder{})
//	if cfg.Server.Metrics {
//	    reg := prometheus.NewRegistry()
//	    recorder = metrics.NewPrometheusRecorder(reg)
//	    router.Handle("/metrics", metrics.HTTPHandler(reg))
//	}
//
// PrometheusRecorder exports stage durations and results, post counts,
// per-route request latency and export totals under the "blogfreeze"
// namespace.
package metrics
