// Package server serves a built coaster scene over HTTP.
//
// The static routes return the layout, the track drawing and the tree in DOT
// form. Animation is per viewer: a client creates a session and polls its
// frame endpoint, and each poll advances that session's cart by the wall
// clock time since its previous poll.
//
//	GET    /healthz
//	GET    /layout
//	GET    /track.svg?at=1.5s&text=true&labels=true
//	GET    /tree.dot?detailed=true
//	POST   /sessions
//	GET    /sessions/{id}/frame?x=120&y=80
//	POST   /sessions/{id}/reset
//	DELETE /sessions/{id}
//	GET    /metrics
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/polarcoaster/pkg/cart"
	"github.com/matzehuels/polarcoaster/pkg/observability"
	"github.com/matzehuels/polarcoaster/pkg/pipeline"
	"github.com/matzehuels/polarcoaster/pkg/scene"
	"github.com/matzehuels/polarcoaster/pkg/session"
)

// Server timeouts.
const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	sweepInterval     = time.Minute
)

// Config wires a [Server].
type Config struct {
	// Layout is the scene being served.
	Layout scene.Layout
	// Runner renders and caches the static drawings. Nil uses an uncached runner.
	Runner *pipeline.Runner
	// Options are the base render options; query parameters refine them.
	Options pipeline.Options
	// Store holds viewer sessions. Nil uses an in-memory store with
	// [session.DefaultTTL].
	Store session.Store
	// Gatherer backs /metrics. Nil omits the route.
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
	// Now is the wall clock. Nil uses time.Now.
	Now func() time.Time
}

// Server is an http.Handler for one scene.
type Server struct {
	layout   scene.Layout
	animator *cart.Animator
	runner   *pipeline.Runner
	opts     pipeline.Options
	store    session.Store
	logger   *log.Logger
	now      func() time.Time
	router   chi.Router
}

// New validates the layout and builds the router.
func New(cfg Config) (*Server, error) {
	if err := cfg.Layout.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Store == nil {
		cfg.Store = session.NewMemoryStore(session.DefaultTTL, 0)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Server{
		layout:   cfg.Layout,
		animator: cfg.Layout.Animator(),
		runner:   cfg.Runner,
		opts:     cfg.Options,
		store:    cfg.Store,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	s.router = s.routes(cfg.Gatherer)
	return s, nil
}

func (s *Server) routes(gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Get("/layout", s.handleLayout)
	r.Get("/track.svg", s.handleTrack)
	r.Get("/tree.dot", s.handleTree)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/frame", s.handleFrame)
			r.Post("/reset", s.handleReset)
			r.Delete("/", s.handleDeleteSession)
		})
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// instrument reports every response to the server hooks and the debug log.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.Server().OnResponse(r.Context(), r.Method, route, status, dur)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", dur,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Sweep removes expired sessions.
func (s *Server) Sweep(ctx context.Context) {
	n, err := s.store.Cleanup(ctx, s.now())
	if err != nil {
		s.logger.Warn("session cleanup failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Debug("expired sessions", "removed", n)
		observability.Server().OnSessions(ctx, s.store.Len())
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep(ctx)
			}
		}
	}()

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
