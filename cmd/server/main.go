package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	_ "lawdesk-api/docs" // Swagger docs
	"lawdesk-api/internal/adapters/http/middleware"
	"lawdesk-api/internal/adapters/http/routes"
	"lawdesk-api/internal/adapters/persistence/models"
	"lawdesk-api/internal/config"
	"lawdesk-api/internal/core/services"
	"lawdesk-api/internal/pkg/logger"
)

// @title LawDesk API
// @version 1.0
// @description Law firm practice management: cases, tasks, contacts and the payment ledger.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@lawdesk.com.br

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:3000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if _, err := logger.New(cfg.Log.Level, cfg.Log.Format); err != nil {
		slog.Error("failed to configure logger", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		slog.Error("failed to auto migrate", "error", err)
		os.Exit(1)
	}
	slog.Info("database migration completed")

	ctx := context.Background()
	if err := config.NewSeeder(db, cfg.Seed).Run(ctx); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	svc := routes.NewServices(db, cfg)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "LawDesk API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, svc, cfg)

	// Every named route is a permission
	if _, err := routes.SyncPermissions(ctx, app, svc.Permissions); err != nil {
		slog.Error("failed to sync permissions", "error", err)
		os.Exit(1)
	}

	// Overdue sweep and token cleanup
	cronService := services.NewCronService(svc.Payments, svc.Auth, cfg.Ledger.OverdueCron, cfg.Ledger.OverdueSweep)
	if err := cronService.Start(); err != nil {
		slog.Error("failed to start cron", "error", err)
		os.Exit(1)
	}
	defer cronService.Stop()

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	slog.Info("server starting", "port", cfg.Port, "mode", cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("failed to start server", "error", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("error during shutdown", "error", err)
	}
	slog.Info("server stopped gracefully")
}
