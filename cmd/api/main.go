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

	"lendshare/internal/api"
	"lendshare/internal/config"
	"lendshare/internal/database"
	"lendshare/internal/domain"
	"lendshare/internal/logging"
	"lendshare/internal/metrics"
	"lendshare/internal/repository"
	"lendshare/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	metrics.Register()

	dbLogger := baseLogger.With().Str("component", "database").Logger()
	db, err := database.NewDB(cfg.Database.Path, &dbLogger)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	cache := buildSearchCache(cfg, baseLogger)

	bookingLogger := baseLogger.With().Str("component", "booking-service").Logger()
	itemLogger := baseLogger.With().Str("component", "item-service").Logger()
	userLogger := baseLogger.With().Str("component", "user-service").Logger()
	requestLogger := baseLogger.With().Str("component", "request-service").Logger()

	bookings := service.NewBookingService(db, domain.AllowAllOverlaps(), &bookingLogger)
	items := service.NewItemService(db, cache, &itemLogger)
	users := service.NewUserService(db, &userLogger)
	requests := service.NewRequestService(db, &requestLogger)

	httpLogger := baseLogger.With().Str("component", "http").Logger()
	server := api.NewHTTPServer(cfg.HTTP, cfg.RateLimit, bookings, items, users, requests, &httpLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Monitoring.PrometheusEnabled {
		go serveMetrics(cfg.Monitoring.PrometheusPort, &logger)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildSearchCache(cfg *config.Config, baseLogger *zerolog.Logger) domain.ListingCache {
	ttl := time.Duration(cfg.Cache.SearchTTLSeconds) * time.Second
	memory := repository.NewMemorySearchCache(ttl)

	var primary repository.SearchCache
	if cfg.Redis.Enabled {
		primary = repository.NewRedisSearchCache(repository.NewRedisClient(cfg.Redis), ttl)
	}

	cacheLogger := baseLogger.With().Str("component", "search-cache").Logger()
	return repository.NewFailoverSearchCache(primary, memory, &cacheLogger)
}

func serveMetrics(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("metrics listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}
