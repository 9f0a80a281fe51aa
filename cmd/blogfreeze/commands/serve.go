package commands

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/blogfreeze/internal/config"
	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
	"git.home.luguber.info/inful/blogfreeze/internal/logfields"
	"git.home.luguber.info/inful/blogfreeze/internal/metrics"
	"git.home.luguber.info/inful/blogfreeze/internal/preview"
	"git.home.luguber.info/inful/blogfreeze/internal/server/httpserver"
	"git.home.luguber.info/inful/blogfreeze/internal/site"
)

const (
	shutdownTimeout = 5 * time.Second
	maxPort         = 65535
)

// ServeCmd implements the 'serve' command, the default.
type ServeCmd struct {
	Host    string `name:"host" default:"127.0.0.1" help:"Interface to listen on"`
	Port    int    `short:"p" name:"port" help:"Port to listen on (default: server.port)"`
	NoDebug bool   `name:"no-debug" help:"Hide unpublished posts, as the exported site does"`
	NoWatch bool   `name:"no-watch" help:"Do not restart on content changes"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	if s.Port < 0 || s.Port > maxPort {
		return errors.ValidationError("--port must be between 1 and 65535").
			WithContext("port", s.Port).
			Build()
	}
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	cfg.Debug = !s.NoDebug
	if s.Port != 0 {
		cfg.Server.Port = s.Port
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recorder, metricsHandler := setupMetrics(cfg)
	blog, err := site.Load(cfg, recorder)
	if err != nil {
		return err
	}

	srv := httpserver.New(blog, httpserver.Options{
		Addr:           net.JoinHostPort(s.Host, strconv.Itoa(cfg.Server.Port)),
		Logger:         slog.Default(),
		Recorder:       recorder,
		MetricsHandler: metricsHandler,
	})
	if err := srv.Start(ctx); err != nil {
		return err
	}
	stop := func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			slog.Warn("HTTP server shutdown error", logfields.Error(err))
		}
	}

	if s.NoWatch {
		<-ctx.Done()
		slog.Info("Shutting down preview server")
		stop()
		return nil
	}

	watcher, err := preview.New(preview.Options{
		Root:      cfg.Content.Root,
		Extension: cfg.Content.Extension,
		Files:     watchedFiles(blog, root.Config),
		Restart: func() error {
			stop()
			return preview.Exec()
		},
	})
	if err != nil {
		stop()
		return err
	}
	defer func() { _ = watcher.Close() }()

	err = watcher.Run(ctx)
	slog.Info("Shutting down preview server")
	stop()
	return err
}

// setupMetrics returns a Prometheus recorder and its /metrics handler when
// server.metrics is enabled.
func setupMetrics(cfg *config.Config) (metrics.Recorder, http.Handler) {
	if !cfg.Server.Metrics {
		return metrics.NoopRecorder{}, nil
	}
	reg := prometheus.NewRegistry()
	return metrics.NewPrometheusRecorder(reg), metrics.HTTPHandler(reg)
}

func watchedFiles(blog *site.Site, configPath string) []string {
	files := blog.WatchedFiles()
	if _, err := os.Stat(configPath); err == nil {
		files = append(files, configPath)
	}
	if dir := blog.Config().Site.Templates; dir != "" {
		if entries, err := os.ReadDir(dir); err == nil {
			for _, e := range entries {
				if !e.IsDir() {
					files = append(files, filepath.Join(dir, e.Name()))
				}
			}
		}
	}
	return files
}
