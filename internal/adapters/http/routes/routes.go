package routes

import (
	"time"

	"creditdesk/internal/adapters/http/handlers"
	"creditdesk/internal/adapters/http/middleware"
	"creditdesk/internal/adapters/persistence/repositories"
	"creditdesk/internal/config"
	"creditdesk/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	creditRepo := repositories.NewCreditRepository(db)
	repaymentRepo := repositories.NewRepaymentRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	clientService := services.NewClientService(clientRepo, creditRepo)
	creditService := services.NewCreditService(creditRepo, clientRepo, repaymentRepo)
	repaymentService := services.NewRepaymentService(repaymentRepo, creditRepo)
	reportingService := services.NewReportingService(creditRepo, clientRepo, repaymentRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	clientHandler := handlers.NewClientHandler(clientService, creditService)
	creditHandler := handlers.NewCreditHandler(creditService)
	repaymentHandler := handlers.NewRepaymentHandler(repaymentService)
	reportingHandler := handlers.NewReportingHandler(reportingService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler, clientHandler,
		creditHandler, repaymentHandler, reportingHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	clientHandler *handlers.ClientHandler,
	creditHandler *handlers.CreditHandler,
	repaymentHandler *handlers.RepaymentHandler,
	reportingHandler *handlers.ReportingHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := router.Group("/auth")
	authRoutes.Use(middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User management routes (Admin only)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)

	// Profile routes (Authenticated users)
	profileRoutes := router.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	setupProfileRoutes(profileRoutes, userHandler)

	// Public simulation route (no account needed to run the numbers)
	router.Post("/credits/simulate", creditHandler.Simulate)

	// Client routes (Officer/Admin)
	clientRoutes := router.Group("/clients")
	clientRoutes.Use(middleware.AuthMiddleware(cfg))
	clientRoutes.Use(middleware.OfficerOrAdmin())
	setupClientRoutes(clientRoutes, clientHandler)

	// Credit routes (Officer/Admin)
	creditRoutes := router.Group("/credits")
	creditRoutes.Use(middleware.AuthMiddleware(cfg))
	creditRoutes.Use(middleware.OfficerOrAdmin())
	setupCreditRoutes(creditRoutes, creditHandler, repaymentHandler)

	// Repayment routes (Officer/Admin)
	repaymentRoutes := router.Group("/repayments")
	repaymentRoutes.Use(middleware.AuthMiddleware(cfg))
	repaymentRoutes.Use(middleware.OfficerOrAdmin())
	setupRepaymentRoutes(repaymentRoutes, repaymentHandler)

	// Reporting routes (Officer/Admin)
	reportRoutes := router.Group("/reports")
	reportRoutes.Use(middleware.AuthMiddleware(cfg))
	reportRoutes.Use(middleware.OfficerOrAdmin())
	setupReportRoutes(reportRoutes, reportingHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (rate limited against brute force)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
	router.Delete("/:id", handler.DeleteUser)
}

// setupProfileRoutes configures profile routes (Authenticated)
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
	router.Put("/password", middleware.StrictRateLimiter(), handler.ChangePassword)
}

// setupClientRoutes configures client routes
func setupClientRoutes(router fiber.Router, handler *handlers.ClientHandler) {
	router.Post("/", handler.Create)
	router.Get("/", handler.List)
	router.Get("/search", handler.Search)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
	router.Get("/:id/credits", handler.GetCredits)
	router.Get("/:id/eligibility", handler.Eligibility)
}

// setupCreditRoutes configures credit routes
func setupCreditRoutes(router fiber.Router, creditHandler *handlers.CreditHandler, repaymentHandler *handlers.RepaymentHandler) {
	router.Post("/", creditHandler.Create)
	router.Get("/", creditHandler.List)
	router.Post("/validate", creditHandler.Validate)
	router.Get("/search/amount", creditHandler.SearchByAmount)
	router.Get("/search/date", creditHandler.SearchByDate)
	router.Get("/:id", creditHandler.GetByID)
	router.Put("/:id", creditHandler.Update)
	router.Delete("/:id", creditHandler.Delete)

	// Decision endpoints
	router.Put("/:id/approve", creditHandler.Approve)
	router.Put("/:id/reject", creditHandler.Reject)

	// Amortization endpoints
	router.Get("/:id/quote", creditHandler.Quote)
	router.Get("/:id/schedule", creditHandler.Schedule)

	// Credit-scoped repayment endpoints
	router.Get("/:id/repayments", repaymentHandler.GetByCredit)
	router.Post("/:id/repayments/installment", repaymentHandler.RecordInstallment)
	router.Post("/:id/repayments/early", repaymentHandler.RecordEarlyRepayment)
	router.Get("/:id/balance", middleware.NoCacheHeaders(), repaymentHandler.Balance)
}

// setupRepaymentRoutes configures repayment routes
func setupRepaymentRoutes(router fiber.Router, handler *handlers.RepaymentHandler) {
	router.Post("/", handler.Create)
	router.Get("/", handler.List)
	router.Get("/search/date", handler.SearchByDate)
	router.Get("/search/amount", handler.SearchByAmount)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
}

// setupReportRoutes configures reporting routes
func setupReportRoutes(router fiber.Router, handler *handlers.ReportingHandler) {
	router.Get("/dashboard", handler.Dashboard)
	router.Get("/delinquent", handler.Delinquent)

	// Aggregates tolerate a short cache window
	summaryCache := middleware.CacheControl(time.Minute)
	router.Get("/credits/by-status", summaryCache, handler.SummaryByStatus)
	router.Get("/credits/by-type", summaryCache, handler.SummaryByType)
	router.Get("/repayments", handler.RepaymentStats)
}
