package routes

import (
	"devicepay/internal/adapters/http/handlers"
	"devicepay/internal/adapters/http/middleware"
	"devicepay/internal/adapters/persistence/repositories"
	"devicepay/internal/config"
	"devicepay/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Setup configures all routes for the application. redisClient may be
// nil; origination then relies solely on the durable idempotency column.
func Setup(app *fiber.App, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	merchantRepo := repositories.NewMerchantRepository(db)
	productRepo := repositories.NewProductRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	deviceRepo := repositories.NewDeviceRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	txManager := repositories.NewTxManager(db)

	var idempotencyStore repositories.IdempotencyStore
	if redisClient != nil {
		idempotencyStore = repositories.NewIdempotencyStore(redisClient)
	}

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	merchantService := services.NewMerchantService(merchantRepo)
	catalogService := services.NewCatalogService(productRepo)
	customerService := services.NewCustomerService(customerRepo)
	deviceService := services.NewDeviceService(deviceRepo)
	originationService := services.NewOriginationService(productRepo, customerRepo, deviceRepo, loanRepo, txManager, idempotencyStore)
	repaymentService := services.NewRepaymentService(loanRepo, txManager)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	merchantHandler := handlers.NewMerchantHandler(merchantService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	deviceHandler := handlers.NewDeviceHandler(deviceService)
	loanHandler := handlers.NewLoanHandler(originationService, repaymentService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	v1 := app.Group("/api/v1")

	// Auth routes
	auth := v1.Group("/auth")
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/logout-all", middleware.AuthMiddleware(cfg), authHandler.LogoutAll)
	auth.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	// Device lock-state poll: consumed by handset agents, no staff login
	v1.Get("/devices/imei/:imei/status", middleware.DeviceStatusCache(), deviceHandler.GetStatusByIMEI)

	// Authenticated routes
	authed := v1.Group("", middleware.AuthMiddleware(cfg))

	// Merchant onboarding (admin only)
	merchants := authed.Group("/merchants", middleware.AdminOnly())
	merchants.Post("/", merchantHandler.CreateMerchant)
	merchants.Get("/", merchantHandler.ListMerchants)
	merchants.Get("/:id", merchantHandler.GetMerchant)
	merchants.Patch("/:id", merchantHandler.UpdateMerchant)

	// Staff users
	users := authed.Group("/users")
	users.Post("/", middleware.AdminOnly(), userHandler.CreateUser)
	users.Get("/", userHandler.ListUsers)
	users.Put("/me/password", userHandler.ChangePassword)
	users.Get("/:id", userHandler.GetUser)
	users.Patch("/:id", middleware.AdminOnly(), userHandler.UpdateUser)

	// Product catalog
	products := authed.Group("/products")
	products.Post("/", middleware.MerchantOnly(), catalogHandler.CreateProduct)
	products.Get("/", catalogHandler.ListProducts)
	products.Get("/:id", catalogHandler.GetProduct)
	products.Patch("/:id", middleware.MerchantOnly(), catalogHandler.UpdateProduct)
	products.Delete("/:id", middleware.MerchantOnly(), catalogHandler.DeleteProduct)

	// Customer directory
	customers := authed.Group("/customers")
	customers.Post("/", middleware.MerchantOnly(), customerHandler.CreateCustomer)
	customers.Get("/", customerHandler.ListCustomers)
	customers.Get("/:id", customerHandler.GetCustomer)
	customers.Patch("/:id", middleware.MerchantOnly(), customerHandler.UpdateCustomer)

	// Device registry
	devices := authed.Group("/devices")
	devices.Post("/", middleware.MerchantOnly(), deviceHandler.RegisterDevice)
	devices.Get("/", deviceHandler.ListDevices)
	devices.Get("/:id", deviceHandler.GetDevice)

	// Loans
	loans := authed.Group("/loans")
	loans.Post("/quote", loanHandler.Quote)
	loans.Post("/", middleware.MerchantOnly(), loanHandler.Originate)
	loans.Get("/", loanHandler.ListLoans)
	loans.Get("/:id", loanHandler.GetLoan)
	loans.Get("/:id/installments", loanHandler.GetInstallments)
	loans.Post("/:id/activate", middleware.MerchantOnly(), loanHandler.Activate)
	loans.Post("/:id/installments/:installmentID/pay", middleware.MerchantOnly(), loanHandler.RecordPayment)

	// Dashboards
	dashboard := authed.Group("/dashboard")
	dashboard.Get("/", dashboardHandler.MerchantDashboard)
	dashboard.Get("/admin", middleware.AdminOnly(), dashboardHandler.AdminDashboard)
}
