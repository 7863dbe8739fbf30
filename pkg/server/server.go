// Package server exposes the batch runner over HTTP.
//
// The API mirrors the CLI's folders command and adds the helpers a web
// front end needs to pick folders:
//
//	GET  /healthz            liveness probe
//	GET  /api/presets        preset names with description and type
//	POST /api/execute        run every subfolder with a preset, returns a job
//	GET  /api/jobs           recent jobs, newest first
//	GET  /api/jobs/{id}      one job
//	POST /api/validate       check base input/output folders
//	POST /api/browse         list a directory
//	POST /api/folder-name    base name of a directory
//
// Errors are JSON objects {"error": message, "code": CODE}.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/markstack/pkg/jobs"
	"github.com/matzehuels/markstack/pkg/pipeline"
	"github.com/matzehuels/markstack/pkg/presets"
)

// DefaultAddr is the listen address used when Config.Addr is empty.
const DefaultAddr = ":5000"

const shutdownTimeout = 10 * time.Second

// Config holds the server dependencies. Nil fields get defaults: built-in
// presets, a runner without cache, an in-memory job store.
type Config struct {
	Addr    string
	Presets presets.Set
	Runner  *pipeline.Runner
	Jobs    jobs.Store
	Logger  *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	addr    string
	presets presets.Set
	runner  *pipeline.Runner
	jobs    jobs.Store
	logger  *log.Logger

	// base is the context for asynchronous jobs; cancelled on shutdown.
	base   context.Context
	cancel context.CancelFunc
}

// New creates a server.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Presets == nil {
		cfg.Presets = presets.Builtin()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Jobs == nil {
		cfg.Jobs = jobs.NewMemoryStore()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:    cfg.Addr,
		presets: cfg.Presets,
		runner:  cfg.Runner,
		jobs:    cfg.Jobs,
		logger:  cfg.Logger,
		base:    base,
		cancel:  cancel,
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/presets", s.handlePresets)
		r.Post("/execute", s.handleExecute)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{id}", s.handleGetJob)
		r.Post("/validate", s.handleValidate)
		r.Post("/browse", s.handleBrowse)
		r.Post("/folder-name", s.handleFolderName)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.cancel()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	s.cancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
