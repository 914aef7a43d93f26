package main

import (
	"context"
	"fmt"

	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/handler"
	mid "storefront-service/internal/middleware"
	"storefront-service/internal/model"
	"storefront-service/internal/storefront"
	"storefront-service/pkg/config"
	"storefront-service/pkg/database"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const serviceName = "storefront-service"

func main() {
	// Load configuration
	appConfig, err := config.Load(serviceName)
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
		ServiceName: serviceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting "+serviceName, appConfig.LogConfig()...)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize cart persistence
	cartStore, err := newCartStore(appConfig, log)
	if err != nil {
		log.Fatal("Failed to initialize cart store", zap.Error(err))
	}

	// Initialize storefront controller
	ctrl := storefront.New(newCatalogSource(&appConfig.Catalog), cartStore, log, storefront.Options{
		PageSize:        appConfig.Catalog.PageSize,
		SearchDebounce:  appConfig.Catalog.SearchDebounce,
		CartSlot:        appConfig.Cart.Slot,
		CheckoutBaseURL: appConfig.Checkout.BaseURL,
		Recipient:       appConfig.Checkout.Recipient,
	})
	defer ctrl.Close()

	// A failed first load leaves the service up; POST /api/catalog/reload retries.
	ctx, cancel := context.WithTimeout(context.Background(), appConfig.Catalog.Timeout)
	if err := ctrl.Init(ctx); err != nil {
		log.Warn("Initial catalog load failed", zap.Error(err))
	}
	cancel()

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check and storefront API routes
	handler.New(ctrl).Register(e)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}

func newCatalogSource(cfg *config.CatalogConfig) catalog.Source {
	if cfg.IsRemote() {
		return catalog.NewHTTPSource(cfg.Source, cfg.Timeout)
	}
	return catalog.FileSource{Path: cfg.Source}
}

func newCartStore(cfg *config.Config, log *zap.Logger) (cart.Store, error) {
	switch cfg.Cart.Store {
	case config.CartStoreMemory:
		log.Warn("Cart is kept in memory and will not survive a restart")
		return cart.NewMemoryStore(), nil
	case config.CartStorePostgres:
		db, err := database.InitDB(&cfg.DB, log, &model.CartSlot{})
		if err != nil {
			return nil, err
		}
		log.Info("Database connection established")
		return cart.NewGormStore(db), nil
	case config.CartStoreFile:
		store, err := cart.NewFileStore(cfg.Cart.Dir)
		if err != nil {
			return nil, err
		}
		log.Info("Cart file store ready", zap.String("dir", cfg.Cart.Dir))
		return store, nil
	}
	return nil, fmt.Errorf("unsupported cart store %q", cfg.Cart.Store)
}
