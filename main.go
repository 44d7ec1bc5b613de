package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/TaskTide-2025/membership-service/internal/config"
	"github.com/TaskTide-2025/membership-service/internal/events"
	"github.com/TaskTide-2025/membership-service/internal/handlers"
	"github.com/TaskTide-2025/membership-service/internal/repositories"
	"github.com/TaskTide-2025/membership-service/internal/repositories/casdoor"
	"github.com/TaskTide-2025/membership-service/internal/repositories/memory"
	"github.com/TaskTide-2025/membership-service/internal/repositories/postgres"
	"github.com/TaskTide-2025/membership-service/internal/services"
	"github.com/TaskTide-2025/membership-service/internal/utils"
	"github.com/TaskTide-2025/membership-service/internal/validator"
	"github.com/TaskTide-2025/membership-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize storage backend
	var (
		db          *gorm.DB
		redisClient *redis.Client
		repo        repositories.Repository
	)

	switch cfg.StorageBackend {
	case "postgres":
		db, err = pkg.InitDatabase(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}

		if cfg.RedisURL != "" {
			redisClient, err = pkg.NewRedisClient(cfg)
			if err != nil {
				log.Printf("Warning: Failed to initialize Redis: %v", err)
			}
		}

		repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
			DB:          db,
			RedisClient: redisClient,
			CasdoorConfig: casdoor.CasdoorConfig{
				Endpoint:         cfg.Casdoor.Endpoint,
				ClientID:         cfg.Casdoor.ClientID,
				ClientSecret:     cfg.Casdoor.ClientSecret,
				Certificate:      cfg.Casdoor.Cert,
				OrganizationName: cfg.Casdoor.Organization,
				ApplicationName:  cfg.Casdoor.Application,
			},
		})
		if err := repoManager.Initialize(); err != nil {
			log.Fatalf("Failed to initialize repositories: %v", err)
		}
		repo = repoManager.GetRepository()

	default:
		// Self-contained demo mode; the auth middleware seeds principals from
		// token claims on first sight.
		repo = memory.NewMemoryRepository()
		logger.Info("Using in-memory storage backend")
	}

	// Initialize event publishing
	var (
		publisher           events.EventPublisher
		notificationService services.NotificationService
	)

	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = events.NewKafkaEventPublisher(cfg.KafkaBrokers, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize Kafka publisher: %v", err)
		}
		logger.Info("Publishing events to Kafka", "brokers", cfg.KafkaBrokers)
	} else {
		// In-process pub/sub with a local notification subscriber.
		pubsub := events.NewGoChannelPubSub(slogLogger)
		publisher = events.NewGoChannelEventPublisher(pubsub)

		notificationService = services.NewNotificationService(pubsub, services.NewLogSink(slogLogger), repo, slogLogger)
		if err := notificationService.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start notification service: %v", err)
		}
	}

	// Initialize validator
	validator := validator.New()

	// Initialize services
	serviceManager := services.NewDefaultServiceManager(db, repo, slogLogger, validator, publisher, cfg.PublicOrigin)
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger, cfg.Casdoor, repo.User())

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	handlers.SetupMiddleware(router, logger)

	// Setup routes
	handlerManager.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment, "storage", cfg.StorageBackend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Stop the notification subscriber before the publisher closes
	if notificationService != nil {
		if err := notificationService.Stop(); err != nil {
			log.Printf("Failed to stop notification service: %v", err)
		}
	}

	// Shutdown services
	if err := serviceManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown services: %v", err)
	}

	logger.Info("Server exited")
}
