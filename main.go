package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/notyourkokoro/FDB/audit"
	"github.com/notyourkokoro/FDB/cache"
	"github.com/notyourkokoro/FDB/client"
	"github.com/notyourkokoro/FDB/config"
	"github.com/notyourkokoro/FDB/controller"
	"github.com/notyourkokoro/FDB/db"
	logger "github.com/notyourkokoro/FDB/logging"
	"github.com/notyourkokoro/FDB/router"
	"github.com/notyourkokoro/FDB/service"
	"github.com/notyourkokoro/FDB/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger(config.GetString("log.dir"))
	defer logger.Sync()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize downstream clients
	authClient := client.NewAuthClient(
		config.GetString("auth.url"),
		config.GetDuration("auth.timeout"),
	)
	storageClient := client.NewStorageClient(
		config.GetString("storage.url"),
		config.GetDuration("storage.timeout"),
		config.GetInt("storage.readRetries"),
	)

	// Initialize the cache coordinator
	ttls, defaultTTL := config.ResourceTTLs()
	coordinator := cache.NewCoordinator(
		cache.NewRedisStore(db.RedisClient),
		storageClient,
		config.GetString("cache.namespace"),
		ttls,
		defaultTTL,
	)

	// Initialize services and utilities
	validationUtil := util.NewValidationUtil()
	notificationService := util.NewNotificationService()
	auditRepository, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Fatal("Failed to initialize audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository)

	// Initialize the gateway service
	recordService := service.NewRecordService(
		authClient,
		coordinator,
		validationUtil,
		notificationService,
		auditService,
		eventBus,
	)

	// Initialize controllers
	recordController := controller.NewRecordController(recordService)

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	engine := router.SetupRouter(
		recordController,
		config.GetInt("ratelimit.requests"),
		config.GetDuration("ratelimit.window"),
	)

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engine,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
