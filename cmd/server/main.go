package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/confessly/confessly/internal/api"
	"github.com/confessly/confessly/internal/cache"
	"github.com/confessly/confessly/internal/channel"
	"github.com/confessly/confessly/internal/db"
	"github.com/confessly/confessly/internal/moderation"
	"github.com/confessly/confessly/internal/notify"
	"github.com/confessly/confessly/pkg/config"
	"github.com/confessly/confessly/pkg/logging"
	"github.com/confessly/confessly/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Confessly Moderation Server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Connect to database and apply the schema
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := db.Migrate(database.DB); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Connect to Redis (optional)
	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisCache.Close()

	// Wire the messaging channel and moderation services
	client := channel.NewTelegramClient(&cfg.Channel)
	notifier := notify.NewNotifier(client, &cfg.Moderation)
	repo := db.NewRepository(database.DB)

	approval := moderation.NewApprovalService(repo, client, notifier, &cfg.Channel)
	deletion := moderation.NewDeletionService(repo, redisCache, &cfg.Moderation)
	users := moderation.NewUserService(repo)
	services := &api.Services{
		Approval:  approval,
		Deletion:  deletion,
		Reports:   moderation.NewReportService(repo, redisCache, notifier, &cfg.Moderation),
		Reactions: moderation.NewReactionService(repo),
		Users:     users,
		Bulk:      moderation.NewBulkService(repo, approval, deletion, users),
	}

	// Create Gin router
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	router := api.NewRouter(services, database, redisCache, client, &cfg.Channel)
	router.SetupRoutes(engine)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
