package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopfront/config"
	"github.com/ikkim/shopfront/internal/app/controller"
	"github.com/ikkim/shopfront/internal/app/repository"
	"github.com/ikkim/shopfront/internal/app/service"
	"github.com/ikkim/shopfront/internal/db"
	"github.com/ikkim/shopfront/internal/events"
	"github.com/ikkim/shopfront/internal/gateway"
	"github.com/ikkim/shopfront/internal/middleware"
	"github.com/ikkim/shopfront/internal/router"
	"github.com/ikkim/shopfront/internal/scheduler"
	"github.com/ikkim/shopfront/internal/storage"
	"github.com/ikkim/shopfront/internal/websocket"
	"github.com/ikkim/shopfront/pkg/logger"
	"github.com/ikkim/shopfront/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: logFormat == "console",
	})

	logger.Info("Starting shopfront server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"upstream":    cfg.Upstream.BaseURL,
		"log_level":   logLevel,
	})

	// Checkout ledger
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs the product cache and the token blacklist; both degrade without it
	var productCache service.ProductCache
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable; running without product cache and token revocation", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		productCache = redis.NewJSONCache(redis.GetClient(), "catalog:product")
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
	}

	upstream, err := gateway.NewClient(gateway.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
	})
	if err != nil {
		logger.Fatal("Failed to create upstream client", err)
	}

	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", err)
		}
	}()

	reportStorage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.Endpoint,
	)

	// Initialize repositories
	checkoutRepo := repository.NewCheckoutRepository(db.GetDB())

	// Initialize services
	catalog := service.NewCatalog(upstream, productCache, cfg.Catalog.CacheTTL)
	sessions := service.NewSessionRegistry(upstream, catalog)
	checkoutService := service.NewCheckoutService(upstream, upstream, checkoutRepo, publisher, cfg.Checkout.MaxParallelOrders)
	orderService := service.NewOrderService(upstream)
	addressService := service.NewAddressService(upstream)
	reportService := service.NewReportService(checkoutRepo, reportStorage)

	// Cart events over websocket
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)
	websocket.BridgeCartUpdates(hub, sessions)

	// Housekeeping jobs
	jobs := scheduler.NewMaintenanceScheduler()
	if err := jobs.Add("session-eviction", cfg.Session.EvictSpec, scheduler.SessionEvictionJob(sessions, cfg.Session.IdleTimeout)); err != nil {
		logger.Fatal("Failed to schedule session eviction", err)
	}
	if err := jobs.Add("catalog-refresh", cfg.Catalog.RefreshSpec, scheduler.CatalogRefreshJob(catalog)); err != nil {
		logger.Fatal("Failed to schedule catalog refresh", err)
	}
	jobs.Start()
	defer jobs.Stop()

	// Initialize controllers
	cartController := controller.NewCartController(sessions)
	checkoutController := controller.NewCheckoutController(sessions, checkoutService, addressService)
	orderController := controller.NewOrderController(orderService)
	addressController := controller.NewAddressController(addressService)
	productController := controller.NewProductController(catalog)
	sessionController := controller.NewSessionController(sessions, redis.TokenStore{})
	websocketController := controller.NewWebSocketController(hub, websocket.NewUpgrader(cfg.CORS.AllowedOrigins))
	reportController := controller.NewReportController(reportService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, redis.TokenStore{})

	r := router.NewRouter(
		cartController,
		checkoutController,
		orderController,
		addressController,
		productController,
		sessionController,
		websocketController,
		reportController,
		authMiddleware,
		healthHandler(sessions, hub),
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully", map[string]interface{}{
		"sessions": sessions.Count(),
	})
}

func healthHandler(sessions *service.SessionRegistry, hub *websocket.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := db.Ping(c.Request.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"service":   "shopfront",
			"sessions":  sessions.Count(),
			"listeners": hub.OnlineUsers(),
		})
	}
}
