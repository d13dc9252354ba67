package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roleplayhq/roleplay-backend/config"
	"github.com/roleplayhq/roleplay-backend/internal/app/controller"
	"github.com/roleplayhq/roleplay-backend/internal/app/repository"
	"github.com/roleplayhq/roleplay-backend/internal/app/service"
	"github.com/roleplayhq/roleplay-backend/internal/db"
	"github.com/roleplayhq/roleplay-backend/internal/middleware"
	"github.com/roleplayhq/roleplay-backend/internal/router"
	"github.com/roleplayhq/roleplay-backend/internal/scheduler"
	"github.com/roleplayhq/roleplay-backend/internal/storage"
	"github.com/roleplayhq/roleplay-backend/pkg/logger"
	"github.com/roleplayhq/roleplay-backend/pkg/mailer"
	"github.com/roleplayhq/roleplay-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting ROLEPLAY Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional; without it logout revocation is disabled
	if cfg.Redis.Host != "" {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
	} else {
		logger.Warn("Redis not configured, token revocation disabled", nil)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	groupRepo := repository.NewGroupRepository(db.GetDB())
	requestRepo := repository.NewGroupRequestRepository(db.GetDB())
	resetTokenRepo := repository.NewResetTokenRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	groupService := service.NewGroupService(groupRepo)
	requestService := service.NewGroupRequestService(requestRepo, groupRepo)
	passwordResetService := service.NewPasswordResetService(
		resetTokenRepo,
		userRepo,
		mailer.New(&cfg.SMTP),
		db.GetDB(),
	)

	// Initialize storage
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService, passwordResetService, cfg.JWT.AccessTokenExpiry)
	groupController := controller.NewGroupController(groupService)
	requestController := controller.NewGroupRequestController(requestService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start the reset token cleanup scheduler
	resetTokenScheduler := scheduler.NewResetTokenScheduler(resetTokenRepo)
	if err := resetTokenScheduler.Start(); err != nil {
		logger.Fatal("Failed to start reset token scheduler", err)
	}
	defer resetTokenScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		groupController,
		requestController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
