package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"nexus_dashboard/internal/cache"
	"nexus_dashboard/internal/config"
	"nexus_dashboard/internal/events"
	"nexus_dashboard/internal/handlers"
	"nexus_dashboard/internal/logging"
	"nexus_dashboard/internal/redis"
	"nexus_dashboard/internal/repository"
	"nexus_dashboard/internal/services"
	"nexus_dashboard/pkg/nexusapi"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg := config.Load()

	logger, cleanup, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Service: "nexus-dashboard",
	})
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer cleanup()

	gin.SetMode(cfg.GinMode)
	decimal.MarshalJSONWithoutQuotes = true

	// Shared cache tier is optional
	var store cache.Store
	if cfg.RedisURL != "" {
		redisClient, err := redis.Initialize(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		store = redisClient
		logger.Info("using redis cache", "url", cfg.RedisURL)
	}

	client := nexusapi.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, logger)
	bus := events.NewBus(logger)

	// Initialize repositories
	inventoryRepo := repository.NewInventoryRepository(client)
	orderRepo := repository.NewOrderRepository(client)
	mroRepo := repository.NewMRORepository(client)
	analyticsRepo := repository.NewAnalyticsRepository(client)

	// Initialize services
	refreshService := services.NewRefreshService(inventoryRepo, orderRepo, cfg.CacheTTL, store, bus, logger)
	analyticsService := services.NewAnalyticsService(analyticsRepo, refreshService, cfg.CacheTTL, bus, logger)
	uploadService := services.NewUploadService(inventoryRepo, orderRepo, bus, logger)
	mroService := services.NewMROService(mroRepo, bus, logger)
	importService := services.NewImportService(mroService, logger)

	// Initialize handlers
	router := handlers.NewRouter(
		handlers.NewAPIHandler(refreshService, analyticsService, uploadService),
		handlers.NewMROHandler(mroService, importService),
		logger,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.ServerPort, "api_base_url", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
		return err
	}
	return nil
}
