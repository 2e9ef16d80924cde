package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mertmzzx/carparts-order-service/internal/events"
	"github.com/mertmzzx/carparts-order-service/internal/handler"
	"github.com/mertmzzx/carparts-order-service/internal/repository"
	"github.com/mertmzzx/carparts-order-service/internal/service"
	"github.com/mertmzzx/carparts-order-service/pkg/config"
	"github.com/mertmzzx/carparts-order-service/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Info("Service configuration",
		zap.String("port", cfg.Port),
		zap.String("table", cfg.TableName),
		zap.String("kafka_brokers", cfg.KafkaBrokers),
		zap.String("audit_topic", cfg.AuditTopic))

	// Initialize components
	dynamoClient, err := repository.NewDynamoDBClient(cfg)
	if err != nil {
		log.Fatal("Failed to create DynamoDB client:", err)
	}

	auditProducer := events.NewAuditProducer(cfg.KafkaBrokers, cfg.AuditTopic, logger)
	defer auditProducer.Close()

	store := repository.NewStore(dynamoClient, cfg.TableName)
	orderService := service.NewOrderService(store, auditProducer, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)

	// Setup Gin Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Identity())

	v1 := router.Group("/api/v1")
	orderHandler.RegisterRoutes(v1)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "carparts-order-service",
			"port":    cfg.Port,
		})
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
