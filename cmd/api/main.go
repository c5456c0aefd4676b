package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-intake-backend/config"
	_ "go-intake-backend/docs" // Important for Swagger
	v1 "go-intake-backend/internal/delivery/http/v1"
	"go-intake-backend/internal/repository/postgres"
	"go-intake-backend/internal/usecase"
	"go-intake-backend/migrations"
	"go-intake-backend/pkg/auth"
	"go-intake-backend/pkg/database"
	"go-intake-backend/pkg/email"
	"go-intake-backend/pkg/logger"
	"go-intake-backend/pkg/metrics"
	"go-intake-backend/pkg/redis"
	"go-intake-backend/pkg/security"
	"go-intake-backend/pkg/security/antivirus"
	"go-intake-backend/pkg/storage"
	"go-intake-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// @title           Candidate Intake API
// @version         1.0
// @description     Identity, post authoring and candidate intake records.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name auth_token
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting intake backend", "port", cfg.Port)

	secLog := security.InitSecurityLogger("intake-backend", cfg.GinMode)
	defer secLog.Sync()

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.RunMigrations {
		applied, err := database.NewMigrator(dbPool, migrations.FS).Up(ctx)
		if err != nil {
			logger.Log.Error("Failed to apply migrations", "error", err)
			os.Exit(1)
		}
		logger.Log.Info("Migrations applied", "count", len(applied), "versions", applied)
	}

	// 4. Redis (optional)
	redisClient, err := redis.Connect(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	switch {
	case errors.Is(err, redis.ErrNotConfigured):
		redisClient = nil
	case err != nil:
		logger.Log.Warn("Redis unavailable, using in-memory rate limits", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// 5. Repositories
	identityRepo := postgres.NewIdentityRepository(dbPool)
	candidateRepo := postgres.NewCandidateRepository(dbPool)
	qualificationRepo := postgres.NewAcademicQualificationRepository(dbPool)
	postRepo := postgres.NewPostRepository(dbPool)

	// 6. Email, storage, scanning
	var mailer email.Sender
	emailService := email.NewEmailService(cfg)
	if emailService.IsConfigured() {
		mailer = emailService
	} else {
		logger.Log.Warn("Email service not configured - issued credentials are only returned to staff")
	}

	var store storage.Store
	if cfg.S3Configured() {
		store, err = storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	} else {
		store, err = storage.NewLocalStore(cfg.CertificateDir)
	}
	if err != nil {
		logger.Log.Error("Failed to set up certificate storage", "error", err)
		os.Exit(1)
	}
	logger.Log.Info("Certificate storage ready", "backend", store.Name())

	scanner := antivirus.New(cfg.ClamAVAddress)

	// 7. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// 8. UseCases
	validate := validation.New()
	hasher := security.NewPasswordHasher(cfg.BcryptCost)
	trackerCfg := security.DefaultLoginTrackerConfig()
	trackerCfg.MaxAttempts = cfg.FailedLoginMaxAttempts
	trackerCfg.BlockDuration = time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute
	tracker := security.NewLoginTracker(trackerCfg, redisClient, secLog)

	identityUC := usecase.NewIdentityUsecase(identityRepo, hasher, validate, tracker, mailer, secLog, m)
	candidateUC := usecase.NewCandidateUsecase(candidateRepo, qualificationRepo, validate, m)
	postUC := usecase.NewPostUsecase(postRepo, validate, secLog, m)
	qualificationUC := usecase.NewAcademicQualificationUsecase(qualificationRepo, validate)
	certificateUC := usecase.NewCertificateUsecase(store, scanner, int(cfg.MaxUploadBytes), secLog, m)
	healthUC := usecase.NewHealthUsecase(dbPool, redisClient)

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		IdentityUC:      identityUC,
		CandidateUC:     candidateUC,
		PostUC:          postUC,
		QualificationUC: qualificationUC,
		CertificateUC:   certificateUC,
		HealthUC:        healthUC,
		Identities:      identityRepo,
		Tokens:          auth.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL),
		Config:          cfg,
		Redis:           redisClient,
		Metrics:         m,
		Gatherer:        registry,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
