package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lipeamarok/ai-ops-inbox/internal/config"
	"github.com/lipeamarok/ai-ops-inbox/internal/database"
	"github.com/lipeamarok/ai-ops-inbox/internal/handlers"
	"github.com/lipeamarok/ai-ops-inbox/internal/middleware"
	"github.com/lipeamarok/ai-ops-inbox/internal/services"
	"github.com/lipeamarok/ai-ops-inbox/internal/webhook"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
	}

	dispatcher := webhook.NewDispatcher(webhook.DispatcherConfig{
		RedisClient: redisClient,
		TaskURL:     cfg.Webhook.TaskURL,
		AppBaseURL:  cfg.Webhook.AppBaseURL,
		Timeout:     cfg.Webhook.Timeout,
		MaxTries:    cfg.Webhook.MaxTries,
	})
	dispatcher.Start(cfg.Webhook.Concurrency)

	userService := services.NewUserService()
	taskService := services.NewTaskService()
	enrichmentService := services.NewEnrichmentService()

	var engine services.ChatEngine
	if chatClient := webhook.NewChatClient(cfg.Webhook.ChatURL, cfg.Webhook.AppBaseURL, cfg.Webhook.Timeout); chatClient.Configured() {
		engine = chatClient
	}
	chatService := services.NewChatService(taskService, dispatcher, engine)

	router := gin.New()
	router.Use(middleware.RecoveryWithLog())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
		MaxAge:          time.Hour,
	}))
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize)
		limiter.StartCleanup(cfg.RateLimit.CleanupInterval)
		router.Use(limiter.Handler())
	}

	api := &handlers.API{
		Users:      handlers.NewUserHandler(db, userService),
		Tasks:      handlers.NewTaskHandler(db, userService, taskService, dispatcher),
		Enrichment: handlers.NewEnrichmentHandler(db, enrichmentService),
		Chat:       handlers.NewChatHandler(db, userService, chatService),
	}
	api.Register(router)

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logrus.WithField("addr", server.Addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("forced shutdown")
	}

	dispatcher.Stop()
	if limiter != nil {
		limiter.StopCleanup()
	}
	if redisClient != nil {
		redisClient.Close()
	}
	logrus.Info("server stopped")
}
