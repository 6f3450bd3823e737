package routes

import (
	"libraria/internal/adapters/http/handlers"
	"libraria/internal/adapters/http/middleware"
	"libraria/internal/adapters/persistence/repositories"
	"libraria/internal/config"
	"libraria/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	readerRepo := repositories.NewReaderRepository(db)
	readerRequestRepo := repositories.NewReaderRequestRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)
	loanRepo := repositories.NewLoanRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, refreshTokenRepo)
	catalogService := services.NewCatalogService(bookRepo)
	readerService := services.NewReaderService(readerRepo, readerRequestRepo, userRepo)
	schedulingService := services.NewSchedulingService(reservationRepo, loanRepo, bookRepo, readerRepo, cfg.Loan.PeriodDays)
	reportService := services.NewReportService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	bookHandler := handlers.NewBookHandler(catalogService)
	readerHandler := handlers.NewReaderHandler(readerService)
	reservationHandler := handlers.NewReservationHandler(schedulingService, readerService)
	loanHandler := handlers.NewLoanHandler(schedulingService, readerService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	setupAuthRoutes(apiV1.Group("/auth"), authHandler, cfg)
	setupBookRoutes(apiV1.Group("/books"), bookHandler, cfg)
	setupReaderRequestRoutes(apiV1.Group("/reader-requests"), readerHandler, cfg)
	setupReaderRoutes(apiV1.Group("/readers"), readerHandler, cfg)
	setupReservationRoutes(apiV1.Group("/reservations"), reservationHandler, cfg)
	setupLoanRoutes(apiV1.Group("/loans"), loanHandler, cfg)
	setupReportRoutes(apiV1.Group("/reports"), reportHandler, cfg)
	setupUserRoutes(apiV1.Group("/users"), userHandler, cfg)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes, rate limited against brute force
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupBookRoutes configures catalog routes. Browsing is public, editing is
// staff only.
func setupBookRoutes(router fiber.Router, handler *handlers.BookHandler, cfg *config.Config) {
	router.Get("/", handler.ListBooks)
	router.Get("/genres", handler.Genres)
	router.Get("/:id", handler.GetBook)

	staffRoutes := router.Group("")
	staffRoutes.Use(middleware.AuthMiddleware(cfg))
	staffRoutes.Use(middleware.StaffOnly())
	staffRoutes.Post("/", handler.CreateBook)
	staffRoutes.Put("/:id", handler.UpdateBook)
}

// setupReaderRequestRoutes configures reader registration routes
func setupReaderRequestRoutes(router fiber.Router, handler *handlers.ReaderHandler, cfg *config.Config) {
	router.Use(middleware.AuthMiddleware(cfg))

	router.Post("/", handler.SubmitRequest)
	router.Get("/my", handler.MyRequestStatus)

	staffRoutes := router.Group("")
	staffRoutes.Use(middleware.StaffOnly())
	staffRoutes.Get("/", handler.ListRequests)
	staffRoutes.Post("/:id/approve", handler.ApproveRequest)
	staffRoutes.Post("/:id/reject", handler.RejectRequest)
}

// setupReaderRoutes configures reader listing routes (staff only)
func setupReaderRoutes(router fiber.Router, handler *handlers.ReaderHandler, cfg *config.Config) {
	router.Use(middleware.AuthMiddleware(cfg))
	router.Use(middleware.StaffOnly())

	router.Get("/", handler.ListReaders)
	router.Get("/:id", handler.GetReader)
}

// setupReservationRoutes configures reservation routes
func setupReservationRoutes(router fiber.Router, handler *handlers.ReservationHandler, cfg *config.Config) {
	router.Use(middleware.AuthMiddleware(cfg))

	router.Post("/", handler.CreateReservation)
	router.Get("/my", handler.MyReservations)
	router.Get("/:id", handler.GetReservation)
	router.Post("/:id/cancel", handler.CancelReservation)

	staffRoutes := router.Group("")
	staffRoutes.Use(middleware.StaffOnly())
	staffRoutes.Get("/", handler.ListReservations)
	staffRoutes.Post("/:id/approve", handler.ApproveReservation)
	staffRoutes.Post("/:id/reject", handler.RejectReservation)
}

// setupLoanRoutes configures loan routes
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler, cfg *config.Config) {
	router.Use(middleware.AuthMiddleware(cfg))

	router.Get("/my", handler.MyLoans)
	router.Get("/:id", handler.GetLoan)

	staffRoutes := router.Group("")
	staffRoutes.Use(middleware.StaffOnly())
	staffRoutes.Get("/", handler.ListLoans)
	staffRoutes.Post("/", handler.CreateLoan)
	staffRoutes.Post("/walkin", handler.CreateWalkInLoan)
	staffRoutes.Post("/:id/return", handler.ReturnLoan)
}

// setupReportRoutes configures reporting routes (staff only, user statistics
// admin only)
func setupReportRoutes(router fiber.Router, handler *handlers.ReportHandler, cfg *config.Config) {
	router.Use(middleware.AuthMiddleware(cfg))
	router.Use(middleware.StaffOnly())

	router.Get("/loans/active", handler.ActiveLoans)
	router.Get("/loans/overdue", handler.OverdueLoans)
	router.Get("/books/popular", handler.PopularBooks)
	router.Get("/readers/activity", handler.ReaderActivityCSV)
	router.Get("/users/statistics", middleware.AdminOnly(), handler.UserStatisticsCSV)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler, cfg *config.Config) {
	router.Use(middleware.AuthMiddleware(cfg))
	router.Use(middleware.AdminOnly())

	router.Get("/", handler.ListUsers)
	router.Put("/:id/role", handler.SetRole)
	router.Delete("/:id", handler.Deactivate)
}
