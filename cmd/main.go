package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"catalog-service/internal/config"
	"catalog-service/internal/handlers"
	"catalog-service/internal/middleware"
	"catalog-service/internal/repository"
)

// @title Catalog Management API
// @version 1.0.0
// @description Multi-tenant product catalog service with pricelist import, validation, and confirmation-gated sync
// @termsOfService http://swagger.io/terms/

// @contact.name Catalog API Support
// @contact.url http://www.example.com/support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8087
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
	} else {
		log.Println("Redis connected successfully")
	}
	cancel()

	// Initialize repositories
	productsRepo := repository.NewProductsRepository(db, redisClient)
	outboxRepo := repository.NewOutboxRepository(db)

	// Initialize handlers
	productsHandler := handlers.NewProductsHandler(productsRepo, cfg.DefaultPageSize, cfg.MaxPageSize)
	importHandler := handlers.NewImportHandler(productsRepo, outboxRepo, cfg.MaxImportFileBytes)
	taxonomyHandler := handlers.NewTaxonomyHandler(productsRepo, cfg.DefaultPageSize, cfg.MaxPageSize)
	healthHandler := handlers.NewHealthHandler(db, redisClient)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORS())

	// Health and metrics endpoints (no auth required)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Health)
	router.GET("/metrics", middleware.MetricsHandler())

	// Protected API routes
	api := router.Group("/api/v1")
	api.Use(middleware.DevelopmentAuthMiddleware())
	api.Use(middleware.TenantMiddleware())

	v1 := api.Group("")
	{
		products := v1.Group("/products")
		{
			products.GET("", productsHandler.GetProducts)
			products.POST("", productsHandler.CreateProduct)
			products.GET("/export", productsHandler.ExportProducts)

			// Pricelist import pipeline
			products.GET("/import/template", importHandler.GetImportTemplate)
			products.POST("/import/validate", importHandler.ValidateImport)
			products.POST("/import/report", importHandler.DownloadReport)
			products.POST("/import/sync", importHandler.SyncImport)
			products.POST("/import/missing-products", importHandler.MissingProducts)

			products.GET("/:id", productsHandler.GetProduct)
			products.PUT("/:id", productsHandler.UpdateProduct)
			products.PATCH("/:id/field", productsHandler.UpdateProductField)
			products.PATCH("/:id/status", productsHandler.UpdateProductStatus)
			products.DELETE("/:id", productsHandler.DeleteProduct)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", taxonomyHandler.GetCategories)
			categories.POST("", taxonomyHandler.CreateCategory)
			categories.GET("/:id", taxonomyHandler.GetCategory)
			categories.PUT("/:id", taxonomyHandler.UpdateCategory)
			categories.DELETE("/:id", taxonomyHandler.DeleteCategory)
		}

		groups := v1.Group("/groups")
		{
			groups.GET("", taxonomyHandler.GetGroups)
			groups.POST("", taxonomyHandler.CreateGroup)
			groups.GET("/:id", taxonomyHandler.GetGroup)
			groups.PUT("/:id", taxonomyHandler.UpdateGroup)
			groups.DELETE("/:id", taxonomyHandler.DeleteGroup)
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Catalog service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	log.Println("Shutting down catalog-service...")

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Catalog service stopped")
}
