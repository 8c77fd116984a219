// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/replenish/backend-go/internal/api"
	"github.com/andresuchdata/replenish/backend-go/internal/cache"
	"github.com/andresuchdata/replenish/backend-go/internal/config"
	"github.com/andresuchdata/replenish/backend-go/internal/events"
	"github.com/andresuchdata/replenish/backend-go/internal/forecast"
	"github.com/andresuchdata/replenish/backend-go/internal/ledger"
	"github.com/andresuchdata/replenish/backend-go/internal/purchasing"
	"github.com/andresuchdata/replenish/backend-go/internal/reorder"
	"github.com/andresuchdata/replenish/backend-go/internal/repository"
	"github.com/andresuchdata/replenish/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/replenish/backend-go/internal/service"
	"github.com/andresuchdata/replenish/backend-go/internal/storage"
	"github.com/andresuchdata/replenish/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	snapshots := postgres.NewSnapshotStore(db)
	orders := postgres.NewOrderStore(db)
	master := postgres.NewMasterDataStore(db)
	leadTimes := postgres.NewLeadTimeStore(db)

	// Events: best-effort redis pub/sub, noop when disabled
	publisher := events.NewNoopPublisher()
	if cfg.Events.Enabled && cfg.Cache.Enabled {
		client, err := cache.NewRedisClient(cfg.Cache)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Events disabled, redis unavailable")
		} else {
			publisher = events.NewRedisPublisher(client, cfg.Events.Channel)
		}
	}

	// Forecasts: remote provider when configured, local table otherwise
	var forecasts repository.ForecastProvider = postgres.NewForecastStore(db)
	if cfg.Forecast.BaseURL != "" {
		client, err := forecast.NewClient(cfg.Forecast)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to build forecast client")
		}
		forecasts = client
	}

	// PO document archive, optional
	var archive storage.ObjectStorage
	if cfg.Storage.Enabled {
		archive, err = storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to build object storage client")
		}
	}

	suggestionCache, err := cache.NewSuggestionCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Suggestion cache disabled, redis unavailable")
		suggestionCache = cache.NewNoopSuggestionCache()
	}

	// Wire the engine
	stockLedger := ledger.NewLedger(snapshots, publisher)
	calculator := reorder.NewCalculator(snapshots, forecasts, leadTimes, master)
	validator := reorder.NewValidator()
	replenishment := service.NewReplenishmentService(calculator, suggestionCache)
	purchasingService := purchasing.NewService(orders, master, leadTimes, stockLedger, validator, publisher, archive)

	router := api.NewRouter(&api.Services{
		Ledger:        stockLedger,
		Replenishment: replenishment,
		Purchasing:    purchasingService,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
