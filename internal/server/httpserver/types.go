package httpserver

import (
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/blogfreeze/internal/metrics"
)

// Options configures additional server wiring.
type Options struct {
	// Addr overrides the listen address derived from server.port.
	Addr string

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Recorder receives per-route request metrics. Defaults to a no-op.
	Recorder metrics.Recorder

	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
}
