package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/catalog-service/internal/app/catalog/config"
	"storefront/catalog-service/internal/app/catalog/handler"
	"storefront/catalog-service/internal/app/catalog/processor"
	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/catalog-service/internal/app/catalog/service"
	"storefront/catalog-service/internal/app/catalog/util"
	"storefront/pkg/auth"
	"storefront/pkg/logger"
	"storefront/pkg/messaging"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const serviceName = "catalog-service"

func main() {
	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	cfg, err := config.Load()
	if err != nil {
		logger.Init(serviceName, "info")
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	if cfg.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.LogstashAddr, serviceName, cfg.LogLevel); err != nil {
			logger.Init(serviceName, cfg.LogLevel)
			logger.Warn().Err(err).Msg("Logstash unavailable, logging to stdout")
		}
	} else {
		logger.Init(serviceName, cfg.LogLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL ===
	// Один пул на оба слоя: pgx для категорий, gorm для товаров
	pool, err := connectDB(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: stdlib.OpenDBFromPool(pool)}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize gorm")
	}
	logger.Info().Msg("Successfully connected to PostgreSQL")

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("addr", cfg.Redis.Address()).Msg("Successfully connected to Redis")

	// === KAFKA PRODUCER ===
	kafkaProducer := messaging.NewKafkaProducer(serviceName, cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()

	// === СЛОИ ПРИЛОЖЕНИЯ ===
	categoryRepo := repository.NewCategoryRepository(pool)
	productRepo := repository.NewProductRepository(gormDB)

	catalogService := service.NewCatalogService(categoryRepo, productRepo, redisClient, kafkaProducer, cfg.Redis.CacheTTL)
	assigner := service.NewCategoryAssigner(categoryRepo, productRepo, redisClient, kafkaProducer, cfg.Assignment.Concurrency)

	if cfg.Audit.Enabled {
		scheduler := processor.NewAuditScheduler(service.NewPricingAuditor(productRepo))
		if err := scheduler.Start(ctx, cfg.Audit.Schedule); err != nil {
			logger.Fatal().Err(err).Str("schedule", cfg.Audit.Schedule).Msg("Failed to start pricing audit")
		}
		defer scheduler.Stop()
	}

	router := handler.SetupRoutes(
		handler.NewCatalogHandler(catalogService, assigner),
		auth.NewMiddleware(cfg.JWT.Secret),
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // пакетное назначение может обходить сотни товаров
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("Starting Catalog Service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	<-ctx.Done()
	logger.Info().Msg("Shutting down Catalog Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Catalog Service stopped gracefully")
}

// connectDB открывает пул pgx с повторными попытками
// PostgreSQL в docker-compose может подняться позже сервиса
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 10; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn().Err(err).Int("attempt", attempt).Msg("Failed to connect to database")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
