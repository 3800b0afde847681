package main

import (
	"fmt"
	"os"
	"strings"

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
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Retail Inventory & POS API
// @version         1.0
// @description     Multi-tenant inventory and point-of-sale backend: warehouses, stores, barcode-tracked stock, draft invoices and exports.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info().Msg("no configs/.env file found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Msg("connected to PostgreSQL")

	barcodeIndex, err := repository.NewRedisBarcodeIndex(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	log.Info().Msg("connected to Redis")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	companyRepo := repository.NewCompanyRepository(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	productRepo := repository.NewProductRepository(db)
	draftRepo := repository.NewDraftRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	userRepo := repository.NewUserRepository(db)
	templateRepo := repository.NewTemplateRepository(db)

	catalogService := service.NewCatalogService(productRepo, warehouseRepo, barcodeIndex, txManager, wsHub)
	saleService := service.NewSaleService(invoiceRepo, draftRepo, productRepo, storeRepo, userRepo, catalogService, barcodeIndex, txManager, wsHub)
	userService := service.NewUserService(userRepo)
	templateService := service.NewTemplateService(templateRepo, productRepo)
	exportService := service.NewExportService(productRepo, invoiceRepo)
	orgService := service.NewOrgService(companyRepo, warehouseRepo, storeRepo)

	catalogHandler := handler.NewCatalogHandler(catalogService)
	saleHandler := handler.NewSaleHandler(saleService)
	userHandler := handler.NewUserHandler(userService)
	templateHandler := handler.NewTemplateHandler(templateService)
	exportHandler := handler.NewExportHandler(exportService)
	orgHandler := handler.NewOrgHandler(orgService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.AllowedOrigins, ",")
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
	api := router.Group("")
	userHandler.RegisterRoutes(api)
	orgHandler.RegisterRoutes(api)
	catalogHandler.RegisterRoutes(api)
	saleHandler.RegisterRoutes(api)
	templateHandler.RegisterRoutes(api)
	exportHandler.RegisterRoutes(api)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Msg("server listening")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
