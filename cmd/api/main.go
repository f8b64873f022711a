package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maskan/internal/api"
	"maskan/internal/config"
	"maskan/internal/database"
	"maskan/internal/domain"
	"maskan/internal/events"
	"maskan/internal/export"
	"maskan/internal/logging"
	"maskan/internal/metrics"
	"maskan/internal/models"
	"maskan/internal/repository"
	"maskan/internal/service"
	"maskan/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	owners, apartments, err := loadApartments(cfg, &logger)
	if err != nil {
		return err
	}

	db, err := initDatabase(cfg, owners, apartments, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, but starting API application. Check your config.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	limiter := buildLimiter(redisClient, &logger)

	notifyWorker := worker.NewNotifyWorker(db, worker.NewLogSender(&logger), redisClient,
		worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2},
		&logger)
	go notifyWorker.Start(ctx)

	eventBus := events.NewEventBus()
	subscribeBookingEvents(eventBus, &logger)

	ledger := service.NewLedgerService(db, &logger)
	bookingService := service.NewBookingService(db, ledger, eventBus, limiter, notifyWorker, nil, cfg.Booking, &logger)

	sweeper := worker.NewCompletionSweeper(db, bookingService, time.Hour, &logger)
	go sweeper.Start(ctx)

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	exporter := export.NewStatementExporter(db, cfg.Exports.Path, &logger)
	httpServer := api.NewHTTPServer(cfg.API, bookingService, ledger, exporter, &logger)

	startMetrics(ctx, cfg, &logger)
	startHealthCheck(ctx, cfg, db, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
}

// subscribeBookingEvents wires an audit log for every lifecycle event.
func subscribeBookingEvents(eventBus *events.EventBus, logger *zerolog.Logger) {
	eventTypes := []string{
		events.EventBookingCreated,
		events.EventBookingApproved,
		events.EventBookingRejected,
		events.EventBookingCancelled,
		events.EventBookingCompleted,
		events.EventModificationRequest,
		events.EventModificationApproved,
		events.EventModificationRejected,
		events.EventRatingSubmitted,
	}
	for _, eventType := range eventTypes {
		eventBus.Subscribe(eventType, func(event *events.Event) error {
			logger.Info().Str("event_type", event.Type).RawJSON("payload", event.Payload).Msg("booking event")
			return nil
		})
	}
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func loadApartments(cfg *config.Config, logger *zerolog.Logger) ([]models.User, []models.Apartment, error) {
	apartmentsPath := os.Getenv("APARTMENTS_PATH")
	if apartmentsPath == "" {
		apartmentsPath = cfg.Apartments
	}
	if apartmentsPath == "" {
		apartmentsPath = "configs/apartments.yaml"
	}

	data, err := os.ReadFile(apartmentsPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("apartments_path", apartmentsPath).Msg("apartments file not found, skipping seed")
			return nil, nil, nil
		}
		logger.Error().Err(err).Str("apartments_path", apartmentsPath).Msg("read apartments")
		return nil, nil, err
	}

	// Цены в файле строковые, decimal не читается из yaml напрямую
	var seed struct {
		Owners []struct {
			ID        int64  `yaml:"id"`
			FirstName string `yaml:"first_name"`
			LastName  string `yaml:"last_name"`
			Phone     string `yaml:"phone"`
			Role      string `yaml:"role"`
		} `yaml:"owners"`
		Apartments []struct {
			ID           int64  `yaml:"id"`
			OwnerID      int64  `yaml:"owner_id"`
			City         string `yaml:"city"`
			Address      string `yaml:"address"`
			NightlyPrice string `yaml:"nightly_price"`
			MonthlyPrice string `yaml:"monthly_price"`
			Status       string `yaml:"status"`
		} `yaml:"apartments"`
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		logger.Error().Err(err).Str("apartments_path", apartmentsPath).Msg("parse apartments")
		return nil, nil, err
	}

	apartments := make([]models.Apartment, 0, len(seed.Apartments))
	for _, raw := range seed.Apartments {
		nightly, err := decimal.NewFromString(raw.NightlyPrice)
		if err != nil {
			return nil, nil, fmt.Errorf("apartment %d: invalid nightly_price %q", raw.ID, raw.NightlyPrice)
		}
		monthly, err := decimal.NewFromString(raw.MonthlyPrice)
		if err != nil {
			return nil, nil, fmt.Errorf("apartment %d: invalid monthly_price %q", raw.ID, raw.MonthlyPrice)
		}
		apartments = append(apartments, models.Apartment{
			ID:           raw.ID,
			OwnerID:      raw.OwnerID,
			City:         raw.City,
			Address:      raw.Address,
			NightlyPrice: nightly,
			MonthlyPrice: monthly,
			Status:       raw.Status,
		})
	}

	owners := make([]models.User, 0, len(seed.Owners))
	for _, raw := range seed.Owners {
		owners = append(owners, models.User{
			ID:        raw.ID,
			FirstName: raw.FirstName,
			LastName:  raw.LastName,
			Phone:     raw.Phone,
			Role:      raw.Role,
		})
	}

	return owners, apartments, nil
}

func initDatabase(cfg *config.Config, owners []models.User, apartments []models.Apartment, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	if len(owners) > 0 {
		if err := db.SeedUsers(context.Background(), owners); err != nil {
			logger.Error().Err(err).Msg("seed owners")
			db.Close()
			return nil, err
		}
	}
	if len(apartments) > 0 {
		if err := db.SeedApartments(context.Background(), apartments); err != nil {
			logger.Error().Err(err).Msg("seed apartments")
			db.Close()
			return nil, err
		}
		logger.Info().Int("owners", len(owners)).Int("apartments", len(apartments)).Msg("seed applied")
	}
	return db, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// buildLimiter prefers Redis so attempt counting survives restarts; the
// in-memory limiter covers Redis outages.
func buildLimiter(redisClient *redis.Client, logger *zerolog.Logger) domain.AttemptLimiter {
	memory := repository.NewMemoryLimiter()
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverLimiter(repository.NewRedisLimiter(redisClient), memory, logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func startHealthCheck(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) {
	port := cfg.Monitoring.HealthCheckPort
	if port == 0 {
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("health server error")
		}
	}()
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}
