// Package server serves crime charts over HTTP.
//
// Routes:
//
//	GET  /healthz                  liveness and version
//	GET  /                         HTML page with every built-in dataset
//	GET  /datasets                 built-in dataset names and totals (JSON)
//	GET  /pie/{dataset}.{format}   pie of a built-in dataset
//	POST /pie.{format}             pie of the JSON counts in the body
//	GET  /bar.{format}             grouped bar chart of the configured records
//
// Chart routes accept ?title= and ?refresh=1. Errors are returned as
// {"error": ..., "code": ...} with a status derived from the error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/crimeviz/pkg/pipeline"
)

// Config configures a Server.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Base is copied into every chart request: geometry, palette and
	// renderer settings. Its input fields are ignored.
	Base pipeline.Options

	// RecordSource feeds /bar and the bar chart on /. Empty disables both.
	RecordSource string
}

// Server is the chart HTTP server.
type Server struct {
	*http.Server
	router chi.Router
	runner *pipeline.Runner
	logger *log.Logger
	cfg    Config
}

// New builds the router and the underlying http.Server.
func New(cfg Config, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{runner: runner, logger: logger, cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/", s.handleIndex)
	r.Get("/datasets", s.handleDatasets)
	r.Get("/pie/{dataset}.{format}", s.handlePieDataset)
	r.Post("/pie.{format}", s.handlePieCounts)
	r.Get("/bar.{format}", s.handleBar)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFound("no route for %s", r.URL.Path))
	})

	s.router = r
	s.Server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.Addr)
		errc <- s.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return s.Shutdown(shutdownCtx)
	}
}

func loggingMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start))
		})
	}
}
