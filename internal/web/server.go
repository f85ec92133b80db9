// Package web serves the bookmark view-model as HTML. The view state
// lives in the query string; every page load reloads the viewed
// collection from its PDS.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nikbrunner/boomarks/internal/logger"
	"github.com/nikbrunner/boomarks/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http *http.Server

	// mu is held from load to render so a page always shows the
	// collection its own URL asked for.
	mu      sync.Mutex
	sess    *session.AppSession
	log     logger.Logger
	now     func() time.Time
	timeout time.Duration
	tmpl    *template.Template
	metrics *Metrics
}

// Params holds parameters for creating a Server.
type Params struct {
	Addr    string
	Session *session.AppSession
	Logger  logger.Logger
	Now     func() time.Time
	Timeout time.Duration // per request; 0 for none
	Metrics *Metrics      // optional, a fresh registry if nil
}

// New builds the HTTP server (router, middlewares, routes).
func New(p Params) *Server {
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Metrics == nil {
		p.Metrics = NewMetrics("boomarks")
	}

	s := &Server{
		sess:    p.Session,
		log:     p.Logger,
		now:     p.Now,
		timeout: p.Timeout,
		metrics: p.Metrics,
		tmpl: template.Must(template.New("").
			Funcs(templateFuncs).
			ParseFS(templateFS, "templates/*.html")),
	}

	s.http = &http.Server{
		Addr:              p.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return s
}

// Handler returns the router with all middlewares applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}
	r.Use(accessLog(s.log))
	r.Use(s.metrics.middleware)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Post("/bookmarks", s.handleCreate)
	r.Post("/bookmarks/delete", s.handleDelete)

	return r
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.log.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
