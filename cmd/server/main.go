package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pulse-social/backend/internal/cache"
	"github.com/pulse-social/backend/internal/database"
	"github.com/pulse-social/backend/internal/feed"
	"github.com/pulse-social/backend/internal/handlers"
	"github.com/pulse-social/backend/internal/logger"
	"github.com/pulse-social/backend/internal/messaging"
	"github.com/pulse-social/backend/internal/metrics"
	"github.com/pulse-social/backend/internal/middleware"
	"github.com/pulse-social/backend/internal/notifications"
	"github.com/pulse-social/backend/internal/posts"
	"github.com/pulse-social/backend/internal/social"
	"github.com/pulse-social/backend/internal/store"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; system environment wins anyway
	_ = godotenv.Load()

	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")); err != nil {
		panic(err)
	}
	defer logger.Close()

	logger.Log.Info("pulse backend starting")

	if err := database.Initialize(); err != nil {
		logger.FatalWithFields("Failed to initialize database", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.FatalWithFields("Failed to run migrations", err)
	}

	metrics.Initialize()

	// Redis is optional; without it feed pages and unread counts are
	// computed from the store every time.
	var redisClient *cache.RedisClient
	if host := os.Getenv("REDIS_HOST"); host != "" {
		var err error
		redisClient, err = cache.NewRedisClient(host, os.Getenv("REDIS_PORT"), os.Getenv("REDIS_PASSWORD"))
		if err != nil {
			logger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	st := store.New(database.DB)
	counters := social.NewCounters(st)
	graph := social.NewGraph(st, counters)
	users := social.NewUsers(st, graph)
	postSvc := posts.NewService(st, counters)
	comments := posts.NewComments(st, postSvc)
	composer := feed.NewComposer(postSvc, graph, redisClient)
	aggregator := notifications.NewAggregator(st, redisClient)
	messenger := messaging.NewService(st)

	h := handlers.NewHandlers(users, graph, postSvc, comments, composer, aggregator, messenger)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-User-ID", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := database.Health(); err != nil {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "pulse-backend",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	h.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.FatalWithFields("Server forced to shutdown", err)
	}

	logger.Log.Info("server exited")
}
