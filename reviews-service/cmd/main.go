package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/pkg/auth"
	"storefront/pkg/logger"
	"storefront/pkg/messaging"
	"storefront/reviews-service/internal/app/reviews/config"
	"storefront/reviews-service/internal/app/reviews/handler"
	"storefront/reviews-service/internal/app/reviews/repository"
	"storefront/reviews-service/internal/app/reviews/service"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const serviceName = "reviews-service"

func main() {
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

	mongoClient, err := connectMongoDB(ctx, cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()
	logger.Info().Str("database", cfg.MongoDB.Database).Msg("Connected to MongoDB")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = redisClient.Ping(pingCtx).Err()
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.Redis.Address()).Msg("Failed to connect to Redis")
	}

	kafkaProducer := messaging.NewKafkaProducer(serviceName, cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().Str("topic", cfg.Kafka.Topic).Msg("Initialized Kafka producer")

	reviewRepo := repository.NewReviewRepository(ctx, mongoClient.Database(cfg.MongoDB.Database))
	snapshotRepo := repository.NewModerationSnapshotRepository(redisClient)
	moderationService := service.NewModerationService(reviewRepo, snapshotRepo, kafkaProducer)

	router := handler.SetupRoutes(handler.NewReviewHandler(moderationService), auth.NewMiddleware(cfg.JWT.Secret))

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting Reviews Service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down Reviews Service...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Reviews Service stopped gracefully")
}

func connectMongoDB(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var lastErr error
	for attempt := 1; attempt <= 10; attempt++ {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		client, err := mongo.Connect(connectCtx, clientOptions)
		if err == nil {
			err = client.Ping(connectCtx, nil)
			if err == nil {
				cancel()
				return client, nil
			}
			_ = client.Disconnect(context.Background())
		}
		cancel()

		lastErr = err
		logger.Warn().Err(err).Int("attempt", attempt).Msg("MongoDB not ready")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}

	return nil, fmt.Errorf("failed to connect to MongoDB after 10 attempts: %w", lastErr)
}
