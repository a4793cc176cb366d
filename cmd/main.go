package main

import (
	"rental-service/internal/bootstrap"
	"rental-service/internal/document"
	"rental-service/internal/handler"
	"rental-service/internal/mailer"
	"rental-service/internal/middleware"
	"rental-service/internal/rdw"
	"rental-service/internal/rental"
	"rental-service/pkg/config"
	"rental-service/pkg/database"
	"rental-service/pkg/jwtutil"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting rental service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Seed default permissions, roles and the initial admin account
	if err := bootstrap.Seed(db, log); err != nil {
		log.Fatal("Failed to seed database", zap.Error(err))
	}

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Wire services
	rentalService := rental.NewService(db, log)
	documentService := document.NewService(db, &cfg.Upload, log)
	mailClient := mailer.NewMailer(&cfg.Mail, log)
	rdwClient := rdw.NewClient(&cfg.RDW, log)

	// Wire handlers
	authHandler := handler.NewAuthHandler(db)
	userHandler := handler.NewUserHandler(db)
	roleHandler := handler.NewRoleHandler(db)
	permissionHandler := handler.NewPermissionHandler(db)
	vehicleHandler := handler.NewVehicleHandler(db)
	customerHandler := handler.NewCustomerHandler(db)
	rentalHandler := handler.NewRentalHandler(rentalService)
	expenseHandler := handler.NewExpenseHandler(db)
	documentHandler := handler.NewDocumentHandler(db, documentService, mailClient)
	lookupHandler := handler.NewLookupHandler(rdwClient)
	reportHandler := handler.NewReportHandler(db)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes - these don't belong under /api since they're for getting access to the API
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)
	api.POST("/logout", authHandler.Logout)
	api.GET("/profile", authHandler.Profile)

	guard := middleware.NewGuard(db)

	// Dashboard and reports
	api.GET("/dashboard", reportHandler.Dashboard, guard.RequirePermission("view_dashboard"))
	api.GET("/reports", reportHandler.Reports, guard.RequirePermission("view_reports"))

	// Fleet management
	vehicles := api.Group("/vehicles")
	vehicles.GET("", vehicleHandler.ListVehicles, guard.RequirePermission("view_vehicles"))
	vehicles.GET("/:id", vehicleHandler.GetVehicle, guard.RequirePermission("view_vehicles"))
	vehicles.POST("", vehicleHandler.CreateVehicle, guard.RequirePermission("manage_vehicles"))
	vehicles.PUT("/:id", vehicleHandler.UpdateVehicle, guard.RequirePermission("manage_vehicles"))
	vehicles.DELETE("/:id", vehicleHandler.DeleteVehicle, guard.RequirePermission("manage_vehicles"))

	// Vehicle registry lookup
	vehicles.GET("/lookup/:license_plate", lookupHandler.LookupVehicle, guard.RequirePermission("manage_vehicles"))

	// Vehicle expenses
	expenses := api.Group("/vehicles/:vehicle_id/expenses")
	expenses.GET("", expenseHandler.ListExpenses, guard.RequirePermission("view_expenses"))
	expenses.POST("", expenseHandler.CreateExpense, guard.RequirePermission("manage_expenses"))
	expenses.PUT("/:expense_id", expenseHandler.UpdateExpense, guard.RequirePermission("manage_expenses"))
	expenses.DELETE("/:expense_id", expenseHandler.DeleteExpense, guard.RequirePermission("manage_expenses"))

	// Vehicle documents
	documents := api.Group("/vehicles/:vehicle_id/documents")
	documents.GET("", documentHandler.ListDocuments, guard.RequirePermission("view_documents"))
	documents.POST("", documentHandler.UploadDocument, guard.RequirePermission("manage_documents"))

	docs := api.Group("/documents")
	docs.GET("/:id/download", documentHandler.DownloadDocument, guard.RequirePermission("view_documents"))
	docs.POST("/:id/share", documentHandler.ShareDocument, guard.RequirePermission("view_documents"))
	docs.DELETE("/:id", documentHandler.DeleteDocument, guard.RequirePermission("manage_documents"))

	// Customer management
	customers := api.Group("/customers")
	customers.GET("", customerHandler.ListCustomers, guard.RequirePermission("view_customers"))
	customers.GET("/:id", customerHandler.GetCustomer, guard.RequirePermission("view_customers"))
	customers.POST("", customerHandler.CreateCustomer, guard.RequirePermission("manage_customers"))
	customers.PUT("/:id", customerHandler.UpdateCustomer, guard.RequirePermission("manage_customers"))
	customers.DELETE("/:id", customerHandler.DeleteCustomer, guard.RequirePermission("manage_customers"))

	// Rental management
	rentals := api.Group("/rentals")
	rentals.GET("", rentalHandler.ListRentals, guard.RequirePermission("view_rentals"))
	rentals.GET("/:id", rentalHandler.GetRental, guard.RequirePermission("view_rentals"))
	rentals.POST("", rentalHandler.CreateRental, guard.RequirePermission("manage_rentals"))
	rentals.PUT("/:id", rentalHandler.UpdateRental, guard.RequirePermission("manage_rentals"))
	rentals.POST("/:id/return", rentalHandler.ReturnRental, guard.RequirePermission("manage_rentals"))

	// Administration - restricted to the admin role
	users := api.Group("/users", guard.RequireRole("admin"))
	users.GET("", userHandler.ListUsers)
	users.GET("/:id", userHandler.GetUser)
	users.POST("", userHandler.CreateUser)
	users.PUT("/:id", userHandler.UpdateUser)
	users.DELETE("/:id", userHandler.DeleteUser)

	roles := api.Group("/roles", guard.RequireRole("admin"))
	roles.GET("", roleHandler.ListRoles)
	roles.GET("/:id", roleHandler.GetRole)
	roles.POST("", roleHandler.CreateRole)
	roles.PUT("/:id", roleHandler.UpdateRole)
	roles.DELETE("/:id", roleHandler.DeleteRole)

	permissions := api.Group("/permissions", guard.RequireRole("admin"))
	permissions.GET("", permissionHandler.ListPermissions)
	permissions.POST("", permissionHandler.CreatePermission)
	permissions.PUT("/:id", permissionHandler.UpdatePermission)
	permissions.DELETE("/:id", permissionHandler.DeletePermission)

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
