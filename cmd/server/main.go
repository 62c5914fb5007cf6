package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"devicepay/internal/adapters/http/middleware"
	"devicepay/internal/adapters/http/routes"
	"devicepay/internal/adapters/persistence/models"
	"devicepay/internal/adapters/persistence/repositories"
	"devicepay/internal/config"
	"devicepay/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "devicepay/docs" // Swagger docs
)

// @title DevicePay API
// @version 1.0
// @description Loan origination and amortization engine for device financing v1.0 API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@devicepay.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.devicepay.io
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed default admin and demo merchant
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed database: %v", err)
	}

	// Redis backs the idempotency reservation layer; optional
	redisClient := config.ConnectRedis(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Start daily collections sweep (08:30)
	collections := services.NewCollectionsService(
		repositories.NewLoanRepository(db),
		repositories.NewTxManager(db),
		cfg.Collections.GracePeriodDays,
	)
	cronService := services.NewCronService(collections)
	cronService.Start()
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "DevicePay API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db, redis and cfg for dependency injection)
	routes.Setup(app, db, redisClient, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
