package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/config"
	"github.com/Abraxas-365/quizcraft/pkg/logx"
	"github.com/Abraxas-365/quizcraft/pkg/respx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const serviceName = "quizcraft-api"

func main() {
	// 1. Initialize Logger
	logx.SetDefaultLogger(logx.NewLogger(logx.LoadFromEnv()))

	logx.Info("🚀 Starting Quizcraft API Server...")

	// 2. Load configuration
	cfg, err := config.Load()
	if err != nil {
		logx.Fatalf("Invalid configuration: %v", err)
	}

	// 3. Initialize Dependency Container
	container := NewContainer(cfg)
	defer container.Cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	container.StartBackgroundServices(ctx)

	// 4. Create Fiber App
	app := newApp(container)

	// 5. Start Server with Graceful Shutdown
	startServer(app, cfg.Server.Port, cancel)
}

// newApp builds the fiber app with global middleware and every route.
func newApp(container *Container) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Quizcraft API",
		DisableStartupMessage: true,
		ErrorHandler:          respx.ErrorHandler,
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:  container.Config.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, api_key, X-API-Key, X-Request-ID",
		AllowMethods:  "GET, POST, PUT, DELETE, HEAD, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${reqHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	// Health Check & Info Endpoints
	app.Get("/health", healthCheckHandler(container))
	app.Get("/", infoHandler)

	// ========================================================================
	// API routes, every one gated by the service key
	// ========================================================================
	api := app.Group("/api", container.IAM.APIKeyMiddleware)

	// Accounts: /api/user/*
	container.IAM.AccountHandlers.RegisterRoutes(api)
	logx.Info("✓ Account routes registered")

	// Billing: /api/products/*, /api/payment/*, /api/checkout/*, /api/subscription/*
	container.BillingHandlers.RegisterRoutes(api)
	logx.Info("✓ Billing routes registered")

	app.Use(respx.NotFound)

	printRouteSummary()
	return app
}

// ============================================================================
// Handler Functions
// ============================================================================

func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": serviceName,
			"version": getEnv("APP_VERSION", "1.0.0"),
			"store":   container.Config.Store.Driver,
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()
		if err := container.Ping(ctx); err != nil {
			health["db"] = "unhealthy"
			health["db_error"] = err.Error()
			health["status"] = "degraded"
			return c.Status(fiber.StatusServiceUnavailable).JSON(health)
		}
		health["db"] = "healthy"
		return c.JSON(health)
	}
}

func infoHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service":     "Quizcraft API",
		"version":     getEnv("APP_VERSION", "1.0.0"),
		"description": "Accounts, e-mail verification and subscription billing",
		"endpoints": fiber.Map{
			"health": "/health",
			"user":   "/api/user",
			"billing": []string{
				"/api/products",
				"/api/payment",
				"/api/checkout",
				"/api/subscription",
			},
		},
	})
}

// ============================================================================
// Utility Functions
// ============================================================================

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func printRouteSummary() {
	logx.Info("📋 Route Summary:")
	logx.Info("   ├─ Accounts: /api/user/*")
	logx.Info("   ├─ Billing: /api/products/*, /api/payment/*, /api/checkout/*, /api/subscription/*")
	logx.Info("   └─ Health: /health")
}

// startServer listens on port and blocks until a shutdown signal arrives.
func startServer(app *fiber.App, port string, stopBackground context.CancelFunc) {
	go func() {
		logx.Info(strings.Repeat("=", 61))
		logx.Infof("🚀 Server listening on port %s", port)
		logx.Infof("💚 Health Check: http://localhost:%s/health", port)
		logx.Info(strings.Repeat("=", 61))

		if err := app.Listen(":" + port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	gracefulShutdown(app, stopBackground)
}

func gracefulShutdown(app *fiber.App, stopBackground context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logx.Infof("🛑 Received signal: %v", sig)
	logx.Info("Shutting down gracefully...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}
	stopBackground()

	logx.Info("✅ Server exited successfully")
}
