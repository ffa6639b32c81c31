// Package api provides the HTTP API for Dishpatch.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/dishpatch/dishpatch/internal/api/handler"
	"github.com/dishpatch/dishpatch/internal/api/middleware"
	"github.com/dishpatch/dishpatch/internal/auth"
	"github.com/dishpatch/dishpatch/internal/prediction"
	"github.com/dishpatch/dishpatch/internal/provider/resilience"
	"github.com/dishpatch/dishpatch/internal/reference"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version           string
	BuildTime         string
	Logger            zerolog.Logger
	ServiceName       string
	Metrics           *middleware.Metrics
	JWTService        *auth.JWTService
	PredictionService *prediction.Service
	ReferenceService  *reference.Service
	ModelRegistry     *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "dishpatch-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ModelRegistry, cfg.ReferenceService)
	predictHandler := handler.NewPredictHandler(cfg.PredictionService)
	metadataHandler := handler.NewMetadataHandler(cfg.ReferenceService)
	adminHandler := handler.NewAdminHandler(cfg.ReferenceService, cfg.Logger)

	// Create auth middleware for admin-scoped service tokens
	adminAuth := middleware.Auth(cfg.JWTService, auth.ScopeAdmin)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min
	adminRateLimit := middleware.RateLimitBySubject(middleware.AdminRateLimit)    // 10 req/min per token subject

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(adminAuth).Get("/status", opsHandler.SystemStatus)
		})

		// Metadata endpoints (public) - standard rate limiting
		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/reference/{column}", metadataHandler.GetReferenceValues)
			r.Get("/enums", metadataHandler.GetEnums)
		})

		// Prediction endpoint - expensive compute, strict rate limiting
		r.With(expensiveRateLimit).Post("/predictions:compute", predictHandler.ComputePrediction)

		// Admin endpoints (authenticated) - for internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuth)
			// Rate limit keyed on the token subject; auth runs first so the
			// subject is in context.
			r.Use(adminRateLimit)
			r.Post("/reference/invalidate", adminHandler.InvalidateReferenceCache)
		})
	})

	return r
}
