// Package server exposes research runs over HTTP: submit a hotel, poll the
// run, or stream its progress over a websocket.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/gimiv/stayfull-research/internal/model"
	"github.com/gimiv/stayfull-research/internal/research"
	"github.com/gimiv/stayfull-research/internal/resilience"
	"github.com/gimiv/stayfull-research/internal/store"
)

// Researcher runs one research pipeline.
type Researcher interface {
	Research(ctx context.Context, q model.Query, tracker *research.Tracker) (*research.Outcome, error)
	Sources() []string
}

// liveRun is a run whose research is still in flight.
type liveRun struct {
	tracker *research.Tracker
	done    chan struct{}
}

// Server handles the research API.
type Server struct {
	researcher Researcher
	store      store.Store
	origins    []string
	country    string
	guards     *resilience.Guards

	// ctx bounds background runs. Cancelling it aborts them.
	ctx context.Context

	mu   sync.Mutex
	live map[string]*liveRun
	wg   sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins sets the allowed CORS origins. Defaults to "*".
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithDefaultCountry sets the country assumed when a request omits one.
func WithDefaultCountry(code string) Option {
	return func(s *Server) { s.country = code }
}

// WithGuards reports the providers' circuit breaker states on /health.
func WithGuards(g *resilience.Guards) Option {
	return func(s *Server) { s.guards = g }
}

// New creates a server. ctx bounds the lifetime of background runs.
func New(ctx context.Context, r Researcher, st store.Store, opts ...Option) *Server {
	s := &Server{
		researcher: r,
		store:      st,
		origins:    []string{"*"},
		country:    model.DefaultCountry,
		ctx:        ctx,
		live:       make(map[string]*liveRun),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/v1/research", func(r chi.Router) {
		r.Post("/", s.handleSubmit)
		r.Get("/{id}", s.handleGet)
		r.Get("/{id}/stream", s.handleStream)
	})
	return r
}

// Wait blocks until every background run has finished.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) lookup(id string) (*liveRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lr, ok := s.live[id]
	return lr, ok
}

// requestLogger logs each request with the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("server: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
