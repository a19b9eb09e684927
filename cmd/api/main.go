package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nabeerak/hackathon-todo/internal/api/handlers"
	"github.com/Nabeerak/hackathon-todo/internal/api/middleware"
	"github.com/Nabeerak/hackathon-todo/internal/api/routes"
	"github.com/Nabeerak/hackathon-todo/internal/domain/action"
	"github.com/Nabeerak/hackathon-todo/internal/domain/ai"
	"github.com/Nabeerak/hackathon-todo/internal/domain/chat"
	"github.com/Nabeerak/hackathon-todo/internal/domain/task"
	"github.com/Nabeerak/hackathon-todo/internal/domain/user"
	"github.com/Nabeerak/hackathon-todo/internal/infrastructure/cache"
	"github.com/Nabeerak/hackathon-todo/internal/infrastructure/events"
	"github.com/Nabeerak/hackathon-todo/internal/infrastructure/persistence/postgres/connection"
	"github.com/Nabeerak/hackathon-todo/internal/infrastructure/persistence/postgres/migrations"
	"github.com/Nabeerak/hackathon-todo/pkg/config"
	"github.com/Nabeerak/hackathon-todo/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// @title           Todo Assistant API
// @version         1.0
// @description     A multi-user todo API with a conversational assistant.

// @host      localhost:8000
// @BasePath

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// RequestLoggerMiddleware logs all incoming HTTP requests
func RequestLoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("Request completed",
			zap.String("path", path),
			zap.String("method", method),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.NewLoggerWithLevel(cfg.Logging.Level)
	defer log.Sync()

	log.Info("Configuration loaded successfully")
	log.Info("Server mode: " + cfg.Server.Mode)

	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	gin.DefaultWriter = os.Stdout

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware(log))
	router.Use(middleware.NewMetricsMiddleware().CollectMetrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowMethods: cfg.CORS.AllowedMethods,
		AllowHeaders: append(cfg.CORS.AllowedHeaders,
			"Accept-Encoding",
			"Content-Type",
			"Authorization",
		),
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
		},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Connect to database and migrate
	db, err := connection.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := migrations.AutoMigrate(db, log.Logger); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Redis backs the response cache for task reads
	redisConfig := cache.NewConfigFromEnv(cfg)
	redisClient, err := cache.NewRedisClient(redisConfig)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	cacheMiddleware := middleware.NewCacheMiddleware(redisClient, "todoai", 5*time.Minute)

	// In-process fan-out for task event streams
	hub := events.NewHub(log.Logger)

	// Repositories
	userRepo := user.NewRepository(db)
	taskRepo := task.NewRepository(db)
	aiRepo := ai.NewRepository(db)
	actionRepo := action.NewRepository(db)
	chatRepo := chat.NewRepository(db)

	// Assistant plumbing: daily quota and the extraction adapter
	limiter := ai.NewLimiter(cfg.AI.DailyLimit)
	extractor := ai.NewOpenAIExtractor(cfg.AI, log.Logger)

	// Services
	userService := user.NewService(userRepo, log.Logger)
	taskService := task.NewService(taskRepo, hub, log.Logger)
	aiService := ai.NewService(aiRepo, limiter, extractor, log.Logger)
	actionService := action.NewService(actionRepo, taskService, aiService, log.Logger)
	chatService := chat.NewService(chatRepo, extractor, aiService, actionService, log.Logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, cfg.Auth)
	taskHandler := handlers.NewTaskHandler(taskService, hub)
	chatHandler := handlers.NewChatHandler(chatService)
	aiHandler := handlers.NewAIHandler(aiService, actionService)

	// Health check routes (no /api prefix as these are system endpoints)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		if err := db.DB.Exec("SELECT 1").Error; err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "not ready",
				"component": "database",
				"error":     err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
		})
	})
	router.GET("/health/cache", func(c *gin.Context) {
		if err := redisClient.HealthCheck(c); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"component": "cache",
				"error":     err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"component": "cache",
			"metrics":   redisClient.GetMetrics(),
		})
	})

	// Routes
	authRoutes := routes.NewAuthRoutes(authHandler, cfg.Auth.JWTSecret)
	authRoutes.RegisterRoutes(router)
	log.Info("Registered auth routes at /api/auth")

	taskRoutes := routes.NewTaskRoutes(taskHandler, cfg.Auth.JWTSecret)
	taskRoutes.RegisterRoutes(router, cacheMiddleware)
	log.Info("Registered task routes at /api/tasks")

	chatRoutes := routes.NewChatRoutes(chatHandler, cfg.Auth.JWTSecret)
	chatRoutes.RegisterRoutes(router)
	log.Info("Registered chat routes at /api/chat")

	aiRoutes := routes.NewAIRoutes(aiHandler, cfg.Auth.JWTSecret)
	aiRoutes.RegisterRoutes(router, cacheMiddleware)
	log.Info("Registered assistant routes at /api/ai")

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info(fmt.Sprintf("Server starting on port %d", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info("Shutting down server...")
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited properly")
}
