package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/rakasetyo/cvrptw-planner/internal/api"
	"github.com/rakasetyo/cvrptw-planner/internal/common/cache"
	"github.com/rakasetyo/cvrptw-planner/internal/common/config"
	"github.com/rakasetyo/cvrptw-planner/internal/common/database"
	"github.com/rakasetyo/cvrptw-planner/internal/common/health"
	"github.com/rakasetyo/cvrptw-planner/internal/common/jobs"
	"github.com/rakasetyo/cvrptw-planner/internal/common/logging"
	"github.com/rakasetyo/cvrptw-planner/internal/common/middleware"
	"github.com/rakasetyo/cvrptw-planner/internal/common/ratelimit"
	"github.com/rakasetyo/cvrptw-planner/internal/common/realtime"
	"github.com/rakasetyo/cvrptw-planner/internal/common/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := config.Load()

	loggerConfig := &logging.LoggerConfig{
		Level:      logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Format:     "json",
		Output:     os.Stdout,
		AddSource:  true,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	logger := logging.NewLogger(loggerConfig)
	logging.InitDefaultLogger(loggerConfig)

	logger.Info("Starting CVRPTW planning service",
		"version", "1.0.0",
		"environment", cfg.Environment,
	)

	logger.Info("Connecting to database...")
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close(db)
	logger.Info("Database connected successfully")

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		log.Fatal("Failed to migrate database:", err)
	}
	logger.Info("Database schema migrated")

	slowQueryLogger := logging.NewSlowQueryLogger(logger, 100*time.Millisecond)
	db.Logger = slowQueryLogger

	logger.Info("Connecting to Redis...")
	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()
	logger.Info("Redis connected successfully")

	repoManager := repository.NewRepositoryManager(db)
	solveRunRepo := repoManager.GetSolveRuns()
	logger.Info("Repository manager initialized")

	redisCache := cache.NewRedisCache(redisClient, "cvrptw")

	hub := realtime.NewWebSocketHub(redisClient, realtime.DefaultWebSocketConfig())
	logger.Info("WebSocket hub initialized")

	healthChecker := health.NewHealthChecker(db, redisClient, "cvrptw-planner", "1.0.0")
	healthHandler := health.NewHandler(healthChecker)
	metricsHandler := health.NewMetricsHandler(healthChecker)
	logger.Info("Health check system initialized")

	jobManagerConfig := jobs.DefaultManagerConfig()
	jobManagerConfig.WorkerConcurrency = cfg.JobWorkerConcurrency
	jobManager := jobs.NewManager(solveRunRepo, redisCache, hub, redisClient, jobManagerConfig)
	jobManager.RegisterAllHandlers()
	if err := jobManager.SetupScheduledJobs(); err != nil {
		logger.Error("Failed to schedule maintenance jobs", "error", err)
		log.Fatal("Failed to schedule maintenance jobs:", err)
	}
	if err := jobManager.Start(); err != nil {
		logger.Error("Failed to start job manager", "error", err)
		log.Fatal("Failed to start job manager:", err)
	}
	logger.Info("Job processing system started", "concurrency", cfg.JobWorkerConcurrency)

	rateLimitManager := ratelimit.NewRateLimitManager(redisClient, nil)
	rateLimitMonitor := ratelimit.NewRateLimitMonitor(redisClient)

	solveHandler := api.NewSolveHandler(solveRunRepo, redisCache, jobManager)

	r := gin.New()

	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(logging.RequestLoggingMiddleware(logger))
	r.Use(logging.PerformanceLoggingMiddleware(logger, 1*time.Second))
	r.Use(logging.ErrorLoggingMiddleware(logger))
	r.Use(logging.RecoveryLoggingMiddleware(logger))
	logger.Info("Logging middleware initialized")

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RecoveryHandler())

	r.Use(ratelimit.MonitoredRateLimitMiddleware(rateLimitManager, rateLimitMonitor))

	setupRoutes(r, solveHandler, hub, jobManager, rateLimitManager, rateLimitMonitor)

	health.SetupHealthRoutes(r, healthHandler)
	health.SetupMetricsRoutes(r, metricsHandler)
	logger.Info("Health check endpoints configured")

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("CVRPTW planning API starting",
			"port", cfg.Port,
			"health_check", "http://localhost:"+cfg.Port+"/healthz",
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Warn("Shutting down server...")

	logger.Info("Stopping job processing system...")
	jobManager.Stop()
	logger.Info("Job processing system stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited gracefully")
}

func setupRoutes(
	r *gin.Engine,
	solveHandler *api.SolveHandler,
	hub *realtime.WebSocketHub,
	jobManager *jobs.Manager,
	rateLimitManager *ratelimit.RateLimitManager,
	rateLimitMonitor *ratelimit.RateLimitMonitor,
) {
	v1 := r.Group("/api/v1")
	{
		api.SetupSolveRoutes(v1, solveHandler, hub)

		admin := v1.Group("/admin")
		{
			rateLimit := admin.Group("/rate-limit")
			{
				rateLimit.GET("/metrics", ratelimit.RateLimitMetricsHandler(rateLimitMonitor))
				rateLimit.GET("/health", ratelimit.RateLimitHealthHandler(rateLimitMonitor))
				rateLimit.GET("/stats", ratelimit.RateLimitStatsHandler(rateLimitMonitor))
				rateLimit.GET("/config", ratelimit.RateLimitConfigHandler(rateLimitManager))
				rateLimit.POST("/config", ratelimit.RateLimitConfigHandler(rateLimitManager))
				rateLimit.PUT("/config/:path/:method", ratelimit.RateLimitConfigHandler(rateLimitManager))
				rateLimit.DELETE("/config/:path/:method", ratelimit.RateLimitConfigHandler(rateLimitManager))
				rateLimit.POST("/reset", ratelimit.RateLimitResetHandler(rateLimitManager))
			}

			jobAPI := jobs.NewJobAPI(jobManager)
			jobs.SetupJobRoutes(admin, jobAPI)
		}
	}
}

// getEnv returns environment variable or default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
