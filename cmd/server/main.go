package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farewatch-service/internal/domain/repository"
	"farewatch-service/internal/infrastructure/config"
	"farewatch-service/internal/infrastructure/persistence"
	"farewatch-service/internal/interface/httpapi"
	redisRepo "farewatch-service/internal/interface/repository"
	"farewatch-service/internal/usecase"
	"farewatch-service/pkg/logger"
	"farewatch-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Farewatch Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up Redis connection
	log.Info("Connecting to Redis", "addr", cfg.RedisAddr)
	redisClient, err := persistence.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal("Failed to connect to Redis", "error", err)
	}

	// Set up place directory: Postgres when configured, built-in table otherwise
	var placeRepository repository.PlaceRepository
	if cfg.PostgresURI != "" {
		gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		placeRepository = redisRepo.NewGormPlaceRepository(gormDB)
	} else {
		log.Warn("POSTGRES_URI not set, using built-in place directory")
		placeRepository = redisRepo.NewStaticPlaceRepository()
	}

	// Set up metrics
	m := metrics.NewMetrics("farewatch")

	// Set up repositories
	fareRepo := redisRepo.NewTravelpayoutsRepository(cfg.FareAPIEndpoint, cfg.FareAPIToken, cfg.Currency, log)
	cacheRepo := redisRepo.NewRedisSearchCacheRepository(redisClient, log)
	watchRepo := redisRepo.NewRedisWatchRepository(redisClient, cfg.WatchTTL, log)
	userRepo := redisRepo.NewRedisUserRepository(redisClient, log)
	notifier := redisRepo.NewTelegramRepository(cfg.TelegramAPIURL, cfg.TelegramBotToken, log)

	// Set up use cases
	orchestrator := usecase.NewSearchOrchestrator(
		fareRepo, cacheRepo, placeRepository, m, log,
		cfg.SearchCacheTTL, cfg.PaceDelay, cfg.RateLimitPause,
	)
	watchService := usecase.NewWatchService(cacheRepo, watchRepo, log)
	watcher := usecase.NewPriceWatcher(
		fareRepo, watchRepo, notifier, placeRepository, m, log,
		cfg.WatchInterval, cfg.RateLimitPause,
		cfg.TrafficMarker, cfg.TrafficSubID,
	)

	// Start price watch loop in a goroutine
	go watcher.Start(ctx)

	// Set up HTTP server
	mux := http.NewServeMux()
	handler := httpapi.NewHandler(
		orchestrator, watchService, cacheRepo, placeRepository, userRepo,
		log, cfg.TrafficMarker, cfg.TrafficSubID,
	)
	handler.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop the watch loop

	if err := redisClient.Close(); err != nil {
		log.Error("Redis close error", "error", err)
	}

	log.Info("Farewatch Service stopped")
}
