package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edwin/internal/config"
	"edwin/internal/di"
	"edwin/internal/shared/database"
	"edwin/internal/shared/logger"
	"edwin/internal/shared/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewLoggerWithConfig(cfg.Log.Level, cfg.Log.Format, cfg.Log.Backend)
	logger.SetDefault(appLogger)
	appLogger.Infof("Starting %s API (%s)", cfg.App.Name, cfg.App.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoClient, err := database.Connect(ctx, cfg.Mongo.URI, database.PoolConfig{
		MaxPoolSize:    cfg.Mongo.MaxPoolSize,
		MinPoolSize:    cfg.Mongo.MinPoolSize,
		ConnectTimeout: cfg.Mongo.Timeout,
	})
	if err != nil {
		appLogger.Fatalf("MongoDB unavailable: %v", err)
	}
	appLogger.Info("MongoDB connection established successfully")

	redisClient, err := database.ConnectRedis(ctx, database.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Warnf("Redis unavailable, running without cache and fanout: %v", err)
		redisClient = nil
	}

	container, err := di.NewContainer(ctx, cfg, mongoClient.Database(cfg.Mongo.Database), redisClient, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to initialize modules: %v", err)
	}

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	container.Start(runCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name + " API",
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: response.ErrorHandler,

		ProxyHeader:             cfg.Server.ProxyHeader,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          cfg.Server.TrustedProxies,
	})

	mw := container.AuthModule.GetMiddleware()
	app.Use(recover.New())
	app.Use(mw.RequestID())
	app.Use(mw.RequestContext())
	app.Use(mw.CORS(cfg.Server.CORSOrigins))
	app.Use(mw.SecurityHeaders())
	app.Use(mw.AccessLog(appLogger))

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.Errorf("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "UNHEALTHY",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"timestamp": time.Now().UTC(),
		})
	})

	api := app.Group("/api", mw.RateLimiter(cfg.Server.RateLimitMax), mw.OptionalAuth(), container.AdminModule.Maintenance())
	container.RegisterRoutes(api)

	serverAddr := cfg.Server.Addr()
	appLogger.Infof("All modules initialized. Starting HTTP server on %s", serverAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			appLogger.Errorf("Server failed to start: %v", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}

	closeCtx, cancelClose := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelClose()
	if err := container.Close(closeCtx); err != nil {
		appLogger.Errorf("Failed to close container: %v", err)
	}
	fmt.Println("Application stopped gracefully.")
}
