package service

import (
	"context"

	"storefront/reviews-service/internal/app/reviews/entity"
)

type ModerationServiceInterface interface {
	Approve(ctx context.Context, reviewID string) (*entity.Review, error)
	Reject(ctx context.Context, reviewID string) error
	ListByProduct(ctx context.Context, productID string) ([]entity.Review, error)
	Counts(ctx context.Context, productID string) (entity.ModerationCounts, error)
}

// EventPublisher - получатель событий модерации, в проде Kafka producer
type EventPublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
}
