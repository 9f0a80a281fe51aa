// Package httpserver serves the blog: the post listing, post pages and the
// feed, plus health and metrics endpoints. The same handler backs the
// preview server and the static exporter.
package httpserver

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
	"git.home.luguber.info/inful/blogfreeze/internal/logfields"
	"git.home.luguber.info/inful/blogfreeze/internal/metrics"
	smw "git.home.luguber.info/inful/blogfreeze/internal/server/middleware"
	"git.home.luguber.info/inful/blogfreeze/internal/site"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// Server wires the site into an HTTP router.
type Server struct {
	site         *site.Site
	opts         Options
	logger       *slog.Logger
	errorAdapter *errors.HTTPErrorAdapter
	router       chi.Router
	startTime    time.Time

	httpServer *http.Server
	listener   net.Listener
}

// New constructs the server and its routes. Nothing listens until Start.
func New(s *site.Site, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}

	srv := &Server{
		site:         s,
		opts:         opts,
		logger:       logger,
		errorAdapter: errors.NewHTTPErrorAdapter(logger),
		startTime:    time.Now(),
	}
	srv.router = srv.routes()
	return srv
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(smw.Chain(s.logger, s.errorAdapter, s.opts.Recorder))
	r.Use(chimw.GetHead)

	r.Get("/", s.handleIndex)
	r.Get(postRoute, s.handlePost)
	r.Get(s.site.Config().Feed.Path, s.handleFeed)
	r.Get("/healthz", s.handleHealth)
	if s.opts.MetricsHandler != nil {
		r.Handle("/metrics", s.opts.MetricsHandler)
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		s.errorAdapter.WriteErrorResponse(w, req, errors.NotFoundError("page not found").
			WithContext("path", req.URL.Path).
			Build())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})
	return r
}

// Handler returns the routed handler. The exporter renders pages through it.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the bound listen address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start binds the listen address and serves in the background. Bind errors
// are returned immediately.
func (s *Server) Start(ctx context.Context) error {
	addr := s.opts.Addr
	if addr == "" {
		addr = fmt.Sprintf(":%d", s.site.Config().Server.Port)
	}

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return errors.RuntimeError("failed to bind listen address").WithCause(err).
			WithContext("addr", addr).
			Build()
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	go func() {
		if serveErr := s.httpServer.Serve(ln); serveErr != nil && !stderrors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped", logfields.Error(serveErr))
		}
	}()

	s.logger.Info("Serving blog", logfields.URL("http://"+displayAddr(ln.Addr())))
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func displayAddr(a net.Addr) string {
	tcp, ok := a.(*net.TCPAddr)
	if !ok || tcp.IP == nil || tcp.IP.IsUnspecified() {
		if ok {
			return fmt.Sprintf("localhost:%d", tcp.Port)
		}
		return a.String()
	}
	return a.String()
}
