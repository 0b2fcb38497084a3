package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/canstralian/GitUpgradeNavigator/internal/config"
	"github.com/canstralian/GitUpgradeNavigator/internal/plans"
	"github.com/canstralian/GitUpgradeNavigator/internal/services"
	"github.com/canstralian/GitUpgradeNavigator/internal/storage"
	"github.com/canstralian/GitUpgradeNavigator/internal/templates"
)

// Server represents the HTTP API server
type Server struct {
	config          config.ServerConfig
	router          *chi.Mux
	planManager     plans.Manager
	templateLoader  *templates.Loader
	repo            storage.Repository
	serviceRegistry *services.Registry
	authMiddleware  *AuthMiddleware
	rateLimiter     *RateLimitMiddleware
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	manager plans.Manager,
	loader *templates.Loader,
	repo storage.Repository,
	registry *services.Registry,
	limiter *RateLimitMiddleware,
) *Server {
	s := &Server{
		config:          cfg,
		planManager:     manager,
		templateLoader:  loader,
		repo:            repo,
		serviceRegistry: registry,
		authMiddleware:  NewAuthMiddleware(repo),
		rateLimiter:     limiter,
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
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// API v1 routes (protected by authentication)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware.Authenticate)
		if s.rateLimiter != nil {
			r.Use(s.rateLimiter.Limit)
		}

		// Assessments
		r.Route("/assessments", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission("assessments:write")).Post("/", s.handleCreateAssessment)
			r.With(s.authMiddleware.RequirePermission("assessments:read")).Get("/", s.handleListAssessments)
			r.With(s.authMiddleware.RequirePermission("assessments:read")).Get("/{id}", s.handleGetAssessment)
		})

		// Upgrade plans
		r.Route("/plans", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission("plans:write")).Post("/generate", s.handleGeneratePlan)
			r.With(s.authMiddleware.RequirePermission("plans:read")).Get("/", s.handleListPlans)

			r.Route("/{id}", func(r chi.Router) {
				r.With(s.authMiddleware.RequirePermission("plans:read")).Get("/", s.handleGetPlan)
				r.With(s.authMiddleware.RequirePermission("plans:write")).Patch("/", s.handleUpdatePlan)
				r.With(s.authMiddleware.RequirePermission("plans:write")).Post("/steps/{stepID}/toggle", s.handleToggleStep)
				r.With(s.authMiddleware.RequirePermission("plans:read")).Get("/events", s.handlePlanEventsWS)
			})
		})

		// Resources
		r.Route("/resources", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission("resources:read")).Get("/", s.handleListResources)
			r.With(s.authMiddleware.RequirePermission("resources:read")).Get("/{id}", s.handleGetResource)
		})

		// Workflow templates
		r.Route("/templates", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission("templates:read")).Get("/", s.handleListTemplates)
			r.With(s.authMiddleware.RequirePermission("templates:read")).Get("/{type}", s.handleGetTemplate)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

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
