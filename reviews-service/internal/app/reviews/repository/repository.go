package repository

import (
	"context"

	"storefront/reviews-service/internal/app/reviews/entity"
)

const serviceName = "reviews-service"

// ReviewRepository определяет методы для работы с отзывами в MongoDB
// Все прочитанные отзывы возвращаются с уже вычисленным Status
type ReviewRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]entity.Review, error)
	SetApproved(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// ModerationSnapshotRepository хранит счетчики отклоненных отзывов.
// После отклонения отзыв удаляется, поэтому историю можно получить только отсюда.
type ModerationSnapshotRepository interface {
	RecordRejection(ctx context.Context, productID string) error
	RevertRejection(ctx context.Context, productID string) error
	RejectedCount(ctx context.Context, productID string) (int, error)
}
