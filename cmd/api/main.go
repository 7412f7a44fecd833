package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/geocon-eng/pipeline-api/docs"
	"github.com/geocon-eng/pipeline-api/internal/auth"
	"github.com/geocon-eng/pipeline-api/internal/config"
	"github.com/geocon-eng/pipeline-api/internal/database"
	"github.com/geocon-eng/pipeline-api/internal/erp"
	"github.com/geocon-eng/pipeline-api/internal/http/handler"
	"github.com/geocon-eng/pipeline-api/internal/http/middleware"
	"github.com/geocon-eng/pipeline-api/internal/http/router"
	"github.com/geocon-eng/pipeline-api/internal/jobs"
	"github.com/geocon-eng/pipeline-api/internal/logger"
	"github.com/geocon-eng/pipeline-api/internal/repository"
	"github.com/geocon-eng/pipeline-api/internal/service"
	"github.com/geocon-eng/pipeline-api/internal/storage"
)

// @title Geocon Pipeline API
// @version 1.0
// @description Proposal and project pipeline API for tracking proposals, legal review, and project delivery

// @contact.name API Support
// @contact.email it@geoconinc.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "pipeline-staging.geoconinc.com"
	case "production":
		docs.SwaggerInfo.Host = "pipeline.geoconinc.com"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database with retry logic
	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize ERP connection (optional - for client directory lookups)
	// This connection is read-only and the app continues without it if not configured
	var erpClient *erp.Client
	if cfg.ERP.Enabled {
		erpClient, err = erp.NewClient(&cfg.ERP, log)
		if err != nil {
			log.Warn("ERP connection failed, continuing without it",
				zap.Error(err),
			)
		} else if erpClient != nil {
			log.Info("ERP connected successfully",
				zap.Int("max_open_conns", cfg.ERP.MaxOpenConns),
				zap.Int("query_timeout_seconds", cfg.ERP.QueryTimeout),
			)
		}
	} else {
		log.Info("ERP not configured, skipping",
			zap.Bool("enabled", cfg.ERP.Enabled),
		)
	}

	// Initialize repositories
	proposalRepo := repository.NewProposalRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	legalHistoryRepo := repository.NewLegalHistoryRepository(db)
	contractRepo := repository.NewExecutedContractRepository(db)
	insuranceRepo := repository.NewInsuranceRequestRepository(db)
	subRequestRepo := repository.NewSubRequestRepository(db)
	pwDirQuestionRepo := repository.NewPWDirQuestionRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	emailLogRepo := repository.NewEmailLogRepository(db)
	activityLogRepo := repository.NewActivityLogRepository(db)
	deletionLogRepo := repository.NewDeletionLogRepository(db)
	fileRepo := repository.NewFileRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	jwtValidator := auth.NewJWTValidator(&cfg.Auth)
	accessService := service.NewAccessService(&cfg.Directory)
	numberSequenceService := service.NewNumberSequenceService(numberSequenceRepo, log)
	notifierService := service.NewNotifierService(&cfg.Notify, emailLogRepo, notificationRepo, userRepo, log)
	auditService := service.NewAuditService(activityLogRepo, deletionLogRepo, &cfg.Notify, log)
	analyticsService := service.NewAnalyticsService(analyticsRepo, proposalRepo, projectRepo, log)
	proposalService := service.NewProposalService(db, proposalRepo, projectRepo, numberSequenceService, analyticsService, notifierService, auditService, accessService, &cfg.Directory, fileStorage, log)
	projectService := service.NewProjectService(db, projectRepo, proposalRepo, legalHistoryRepo, analyticsService, notifierService, auditService, accessService, fileStorage, log)
	complianceService := service.NewComplianceService(contractRepo, insuranceRepo, subRequestRepo, pwDirQuestionRepo, projectRepo, notifierService, auditService, log)
	fileService := service.NewFileService(fileRepo, proposalRepo, projectRepo, auditService, fileStorage, log)
	notificationService := service.NewNotificationService(notificationRepo, log)
	userService := service.NewUserService(userRepo, jwtValidator, &cfg.Auth, &cfg.Directory, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	auditMiddleware := middleware.NewAuditMiddleware(auditService, nil, log)

	// Initialize handlers
	proposalHandler := handler.NewProposalHandler(proposalService, log)
	projectHandler := handler.NewProjectHandler(projectService, log)
	complianceHandler := handler.NewComplianceHandler(complianceService, log)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, accessService, log)
	fileHandler := handler.NewFileHandler(fileService, cfg.Storage.MaxUploadSizeMB, log)
	authHandler := handler.NewAuthHandler(userService, log)
	auditHandler := handler.NewAuditHandler(auditService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	clientHandler := handler.NewClientHandler(erpClient, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		auditMiddleware,
		proposalHandler,
		projectHandler,
		complianceHandler,
		analyticsHandler,
		fileHandler,
		authHandler,
		auditHandler,
		notificationHandler,
		clientHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.FollowUpEnabled {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterFollowUpJob(
			scheduler,
			proposalRepo,
			notifierService,
			cfg.Jobs.FollowUpAfterDays,
			log,
			cfg.Jobs.FollowUpCron,
		); err != nil {
			log.Error("Failed to register follow-up job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with follow-up job",
				zap.String("cron_expr", cfg.Jobs.FollowUpCron),
				zap.Int("after_days", cfg.Jobs.FollowUpAfterDays),
			)
		}
	} else {
		log.Info("Follow-up reminder job disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close ERP connection if initialized
		if erpClient != nil {
			if err := erpClient.Close(); err != nil {
				log.Warn("Error closing ERP connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
