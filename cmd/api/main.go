package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/storage"
	"backend/internal/websocket"
	"context"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Municipal Licensing Portal API
// @version         1.0
// @description     Multi-stage approval workflow for municipal professional license applications.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	storageDir := os.Getenv("STORAGE_DIR")
	if storageDir == "" {
		storageDir = "./data/documents"
	}
	store, err := storage.NewDiskStore(storageDir)
	if err != nil {
		log.Fatalf("Document store init failed: %v", err)
	}

	verifyBaseURL := os.Getenv("VERIFY_BASE_URL")
	if verifyBaseURL == "" {
		verifyBaseURL = "http://localhost:8080"
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	otpRepo := repository.NewOtpRepository(db)
	certRepo := repository.NewCertificateRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo, db)
	auditService := service.NewAuditService(db)
	appService := service.NewApplicationService(db, txManager, appRepo, docRepo, auditRepo, wsHub)
	wfService := service.NewWorkflowService(db, txManager, appRepo, docRepo, apptRepo, auditRepo, wsHub)
	apptService := service.NewAppointmentService(db, txManager, appRepo, apptRepo, auditRepo, wsHub)
	certService := service.NewCertificateService(db, txManager, appRepo, certRepo, docRepo, auditRepo, store, wsHub, verifyBaseURL)
	otpService := service.NewOtpService(db, txManager, appRepo, otpRepo, docRepo, auditRepo, store, certService, wsHub)
	paymentService := service.NewPaymentService(db, txManager, appRepo, docRepo, auditRepo, store, wsHub)
	docService := service.NewDocumentService(db, txManager, appRepo, docRepo, auditRepo, store)

	// Certificate issuer: background worker plus startup recovery for
	// approvals that crashed before enqueueing.
	ctx := context.Background()
	go certService.Run(ctx)
	if err := certService.RecoverPending(ctx); err != nil {
		log.Printf("Certificate recovery failed: %v", err)
	}

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	appHandler := handler.NewApplicationHandler(appService)
	wfHandler := handler.NewWorkflowHandler(wfService)
	apptHandler := handler.NewAppointmentHandler(apptService)
	otpHandler := handler.NewOtpHandler(otpService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	certHandler := handler.NewCertificateHandler(certService)
	docHandler := handler.NewDocumentHandler(docService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	root := router.Group("")
	userHandler.RegisterRoutes(root)
	appHandler.RegisterRoutes(root)
	wfHandler.RegisterRoutes(root)
	apptHandler.RegisterRoutes(root)
	otpHandler.RegisterRoutes(root)
	paymentHandler.RegisterRoutes(root)
	certHandler.RegisterRoutes(root)
	docHandler.RegisterRoutes(root)
	auditHandler.RegisterRoutes(root)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
