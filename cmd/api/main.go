package main

import (
	"os"

	_ "backend/api/swagger" // swagger docs
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Sales Transaction Approval API
// @version         1.0
// @description     Backend for submitting sales transactions, computing their financial metrics and running the approval workflow.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()
	if cfg.AllowBootstrap {
		log.Warn().Msg("default-users setup endpoint is enabled; do not expose this instance publicly")
	}

	db, err := database.NewConnection(cfg.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Msg("connected to PostgreSQL")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	rateRepo := repository.NewExchangeRateRepository(db)
	statsRepo := repository.NewStatisticsRepository(db)

	userService := service.NewUserService(userRepo, auditRepo, txManager, middleware.GetJWTSecret(), cfg.AllowBootstrap)
	txnService := service.NewTransactionService(txnRepo, auditRepo, rateRepo, txManager, wsHub)
	excelService := service.NewExcelService()
	rateService := service.NewExchangeRateService(rateRepo, auditRepo, txManager)
	auditService := service.NewAuditService(auditRepo)
	statsService := service.NewStatisticsService(statsRepo)

	authHandler := handler.NewAuthHandler(userService)
	txnHandler := handler.NewTransactionHandler(txnService)
	excelHandler := handler.NewExcelHandler(excelService)
	rateHandler := handler.NewExchangeRateHandler(rateService)
	auditHandler := handler.NewAuditHandler(auditService)
	statsHandler := handler.NewStatisticsHandler(statsService)

	// Set up Gin Router
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())

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
	api := router.Group("/api")
	authHandler.RegisterRoutes(api)
	txnHandler.RegisterRoutes(api)
	excelHandler.RegisterRoutes(api)
	rateHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)
	statsHandler.RegisterRoutes(api)

	log.Info().Str("port", cfg.Port).Msg("server listening")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
