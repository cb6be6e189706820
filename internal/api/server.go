// Package api exposes the engine over HTTP: analysis and generation
// endpoints, history, health, metrics, and a websocket progress stream.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/devtrail/idea-engine/internal/analysis"
	"github.com/devtrail/idea-engine/internal/cache"
	"github.com/devtrail/idea-engine/internal/config"
	"github.com/devtrail/idea-engine/internal/projects"
	"github.com/devtrail/idea-engine/internal/services"
	"github.com/devtrail/idea-engine/internal/storage"
	"github.com/devtrail/idea-engine/internal/tokens"
)

// Server represents the HTTP API server
type Server struct {
	config    config.ServerConfig
	router    *chi.Mux
	analyzer  *analysis.Service
	generator *projects.Generator
	estimator *tokens.Estimator
	cache     cache.Store
	repo      storage.Repository
	registry  *services.Registry
	metrics   *metrics
}

// NewServer creates a new API server. repo may be nil when persistence is
// not configured; the history endpoints then answer 503.
func NewServer(
	cfg config.ServerConfig,
	analyzer *analysis.Service,
	generator *projects.Generator,
	estimator *tokens.Estimator,
	store cache.Store,
	repo storage.Repository,
	registry *services.Registry,
) *Server {
	s := &Server{
		config:    cfg,
		analyzer:  analyzer,
		generator: generator,
		estimator: estimator,
		cache:     store,
		repo:      repo,
		registry:  registry,
		metrics:   newMetrics(),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health and metrics (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/companies", func(r chi.Router) {
			r.Post("/analyze-company", s.handleAnalyzeCompany)
			r.Get("/analyze-company/stream", s.handleAnalyzeStream)
			r.Post("/preview-tokens", s.handlePreviewTokens)
			r.Get("/{name}/profile", s.handleGetProfile)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Post("/generate", s.handleGenerateProjects)
			r.Post("/refine", s.handleRefineProject)
			r.Post("/export", s.handleExportProjects)
		})

		r.Route("/analyses", func(r chi.Router) {
			r.Get("/", s.handleListAnalyses)
			r.Get("/{id}", s.handleGetAnalysis)
			r.Delete("/{id}", s.handleDeleteAnalysis)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		s.metrics.requests.Add(1)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
