package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// rejectedCountersKey - hash product_id -> число отклоненных отзывов
const rejectedCountersKey = "moderation:rejected"

type snapshotRepository struct {
	client *redis.Client
}

func NewModerationSnapshotRepository(client *redis.Client) ModerationSnapshotRepository {
	return &snapshotRepository{client: client}
}

func (r *snapshotRepository) RecordRejection(ctx context.Context, productID string) error {
	return r.increment(ctx, productID, 1)
}

// RevertRejection откатывает RecordRejection, если удаление отзыва не удалось
func (r *snapshotRepository) RevertRejection(ctx context.Context, productID string) error {
	return r.increment(ctx, productID, -1)
}

func (r *snapshotRepository) increment(ctx context.Context, productID string, delta int64) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpHIncrBy)
	defer timer.ObserveDuration()

	if err := r.client.HIncrBy(ctx, rejectedCountersKey, productID, delta).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpHIncrBy)
		return fmt.Errorf("failed to update rejection counter: %w", err)
	}
	return nil
}

func (r *snapshotRepository) RejectedCount(ctx context.Context, productID string) (int, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpHGet)
	defer timer.ObserveDuration()

	count, err := r.client.HGet(ctx, rejectedCountersKey, productID).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpHGet)
		return 0, fmt.Errorf("failed to read rejection counter: %w", err)
	}
	if count < 0 {
		return 0, nil
	}
	return count, nil
}
