package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/geocon-eng/pipeline-api/internal/auth"
	"github.com/geocon-eng/pipeline-api/internal/config"
	"github.com/geocon-eng/pipeline-api/internal/database"
	"github.com/geocon-eng/pipeline-api/internal/http/handler"
	"github.com/geocon-eng/pipeline-api/internal/http/middleware"

	_ "github.com/geocon-eng/pipeline-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	auditMiddleware     *middleware.AuditMiddleware
	proposalHandler     *handler.ProposalHandler
	projectHandler      *handler.ProjectHandler
	complianceHandler   *handler.ComplianceHandler
	analyticsHandler    *handler.AnalyticsHandler
	fileHandler         *handler.FileHandler
	authHandler         *handler.AuthHandler
	auditHandler        *handler.AuditHandler
	notificationHandler *handler.NotificationHandler
	clientHandler       *handler.ClientHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	auditMiddleware *middleware.AuditMiddleware,
	proposalHandler *handler.ProposalHandler,
	projectHandler *handler.ProjectHandler,
	complianceHandler *handler.ComplianceHandler,
	analyticsHandler *handler.AnalyticsHandler,
	fileHandler *handler.FileHandler,
	authHandler *handler.AuthHandler,
	auditHandler *handler.AuditHandler,
	notificationHandler *handler.NotificationHandler,
	clientHandler *handler.ClientHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		auditMiddleware:     auditMiddleware,
		proposalHandler:     proposalHandler,
		projectHandler:      projectHandler,
		complianceHandler:   complianceHandler,
		analyticsHandler:    analyticsHandler,
		fileHandler:         fileHandler,
		authHandler:         authHandler,
		auditHandler:        auditHandler,
		notificationHandler: notificationHandler,
		clientHandler:       clientHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/login", rt.authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.auditMiddleware.Audit)

			// Auth & users
			r.Get("/auth/me", rt.authHandler.Me)
			r.With(rt.authMiddleware.RequireAdmin).Get("/users", rt.authHandler.ListUsers)
			r.With(rt.authMiddleware.RequireAdmin).Put("/users/{id}/role", rt.authHandler.UpdateUserRole)

			// Proposals
			r.Route("/proposals", func(r chi.Router) {
				r.Get("/", rt.proposalHandler.List)
				r.Post("/", rt.proposalHandler.Create)
				r.Get("/number/{number}", rt.proposalHandler.GetByNumber)
				r.Post("/number/{number}/files", rt.fileHandler.UploadToProposal)
				r.Get("/{id}", rt.proposalHandler.Get)
				r.Put("/{id}", rt.proposalHandler.Update)
				r.Delete("/{id}", rt.proposalHandler.Delete)
				r.Post("/{id}/sent", rt.proposalHandler.MarkSent)
				r.Post("/{id}/lost", rt.proposalHandler.MarkLost)
				r.Post("/{id}/won", rt.proposalHandler.MarkWon)
			})

			// Projects & legal queue
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", rt.projectHandler.List)
				r.Get("/legal-queue", rt.projectHandler.GetLegalQueue)
				r.Get("/number/{number}", rt.projectHandler.GetByNumber)
				r.Post("/number/{number}/files", rt.fileHandler.UploadToProject)
				r.Get("/{id}", rt.projectHandler.Get)
				r.Delete("/{id}", rt.projectHandler.Delete)
				r.Put("/{id}/legal-status", rt.projectHandler.UpdateLegalStatus)
				r.Get("/{id}/legal-history", rt.projectHandler.GetLegalHistory)
				r.Post("/{id}/info", rt.projectHandler.SubmitInfo)
				r.Post("/{id}/complete", rt.projectHandler.Complete)
			})

			// Executed contracts
			r.Route("/contracts", func(r chi.Router) {
				r.Get("/", rt.complianceHandler.ListContracts)
				r.Post("/{id}/file", rt.complianceHandler.FileContract)
			})

			// Insurance certificates
			r.Route("/insurance", func(r chi.Router) {
				r.Get("/", rt.complianceHandler.ListInsurance)
				r.Post("/{id}/issue", rt.complianceHandler.IssueInsurance)
			})

			// Subcontractor requests
			r.Route("/sub-requests", func(r chi.Router) {
				r.Get("/", rt.complianceHandler.ListSubRequests)
				r.Post("/", rt.complianceHandler.CreateSubRequest)
				r.Put("/{id}", rt.complianceHandler.UpdateSubRequest)
			})

			// Prevailing wage questions
			r.Route("/pw-dir-questions", func(r chi.Router) {
				r.Get("/", rt.complianceHandler.ListPWDirQuestions)
				r.Post("/", rt.complianceHandler.CreatePWDirQuestion)
				r.Put("/{id}", rt.complianceHandler.UpdatePWDirQuestion)
			})

			// Client directory (ERP-backed, optional)
			r.Route("/clients", func(r chi.Router) {
				r.Get("/", rt.clientHandler.Search)
				r.Get("/{number}", rt.clientHandler.GetByNumber)
			})

			// Analytics
			r.Get("/analytics", rt.analyticsHandler.GetReport)
			r.Get("/analytics/monthly", rt.analyticsHandler.GetMonthly)

			// Audit logs (admin only)
			r.Route("/audit", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Get("/activity", rt.auditHandler.ListActivity)
				r.Get("/deletions", rt.auditHandler.ListDeletions)
			})

			// Files
			r.Route("/files", func(r chi.Router) {
				r.Get("/", rt.fileHandler.ListByEntity)
				r.Get("/{id}", rt.fileHandler.GetByID)
				r.Get("/{id}/download", rt.fileHandler.Download)
				r.Delete("/{id}", rt.fileHandler.Delete)
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/count", rt.notificationHandler.GetUnreadCount)
				r.Put("/read-all", rt.notificationHandler.MarkAllAsRead)
				r.Get("/{id}", rt.notificationHandler.GetByID)
				r.Put("/{id}/read", rt.notificationHandler.MarkAsRead)
			})
		})
	})

	return r
}
