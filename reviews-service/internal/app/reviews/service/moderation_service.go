package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/reviews-service/internal/app/reviews/entity"
	"storefront/reviews-service/internal/app/reviews/moderation"
	"storefront/reviews-service/internal/app/reviews/repository"

	"github.com/google/uuid"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrReviewNotFound    = errors.New("review not found")
	ErrIllegalTransition = errors.New("illegal moderation transition")
)

const (
	actionApprove = "approve"
	actionReject  = "reject"

	resultApplied = "applied"
	resultNoop    = "noop"
	resultIllegal = "illegal"
	resultFailed  = "failed"
)

// ModerationService управляет переходами pending -> approved и pending -> rejected.
// Отклонение удаляет отзыв, поэтому перед удалением фиксируется счетчик в Redis.
type ModerationService struct {
	reviewRepo    repository.ReviewRepository
	snapshotRepo  repository.ModerationSnapshotRepository
	kafkaProducer EventPublisher
}

func NewModerationService(
	reviewRepo repository.ReviewRepository,
	snapshotRepo repository.ModerationSnapshotRepository,
	kafkaProducer EventPublisher,
) *ModerationService {
	return &ModerationService{
		reviewRepo:    reviewRepo,
		snapshotRepo:  snapshotRepo,
		kafkaProducer: kafkaProducer,
	}
}

// Approve одобряет ожидающий отзыв. Повторное одобрение ничего не меняет.
func (s *ModerationService) Approve(ctx context.Context, reviewID string) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		metrics.RecordModerationTransition(actionApprove, resultFailed)
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	if !moderation.CanApprove(review.Status) {
		metrics.RecordModerationTransition(actionApprove, resultIllegal)
		return nil, fmt.Errorf("%w: cannot approve %s review", ErrIllegalTransition, review.Status)
	}
	if review.Status == entity.StatusApproved {
		metrics.RecordModerationTransition(actionApprove, resultNoop)
		return review, nil
	}

	if err := s.reviewRepo.SetApproved(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		metrics.RecordModerationTransition(actionApprove, resultFailed)
		return nil, fmt.Errorf("failed to approve review: %w", err)
	}

	approved := true
	review.Approved = &approved
	review.Status = moderation.Classify(review.Approved, review.Comment)

	metrics.RecordModerationTransition(actionApprove, resultApplied)
	s.publishEvent(ctx, entity.EventReviewApproved, review)

	return review, nil
}

// Reject отклоняет отзыв и удаляет его из хранилища.
// Отсутствующий отзыв считается уже отклоненным.
func (s *ModerationService) Reject(ctx context.Context, reviewID string) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			metrics.RecordModerationTransition(actionReject, resultNoop)
			return nil
		}
		metrics.RecordModerationTransition(actionReject, resultFailed)
		return fmt.Errorf("failed to get review: %w", err)
	}

	if !moderation.CanReject(review.Status) {
		metrics.RecordModerationTransition(actionReject, resultIllegal)
		return fmt.Errorf("%w: cannot reject %s review", ErrIllegalTransition, review.Status)
	}

	// Счетчик пишется до удаления: после удаления отзыв уже не посчитать
	if err := s.snapshotRepo.RecordRejection(ctx, review.ProductID); err != nil {
		metrics.RecordModerationTransition(actionReject, resultFailed)
		return fmt.Errorf("failed to snapshot rejection: %w", err)
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		// Отзыв удален параллельным запросом, который учел его сам
		if errors.Is(err, repository.ErrReviewNotFound) {
			s.revertSnapshot(ctx, review.ProductID)
			metrics.RecordModerationTransition(actionReject, resultNoop)
			return nil
		}

		s.revertSnapshot(ctx, review.ProductID)
		metrics.RecordModerationTransition(actionReject, resultFailed)
		return fmt.Errorf("failed to delete review: %w", err)
	}

	review.Status = entity.StatusRejected
	metrics.RecordModerationTransition(actionReject, resultApplied)
	s.publishEvent(ctx, entity.EventReviewRejected, review)

	return nil
}

// ListByProduct возвращает отзывы товара с вычисленным состоянием
func (s *ModerationService) ListByProduct(ctx context.Context, productID string) ([]entity.Review, error) {
	reviews, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// Counts собирает сводку модерации: текущие отзывы плюс уже удаленные отклоненные
func (s *ModerationService) Counts(ctx context.Context, productID string) (entity.ModerationCounts, error) {
	reviews, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return entity.ModerationCounts{}, fmt.Errorf("failed to list reviews: %w", err)
	}

	removed, err := s.snapshotRepo.RejectedCount(ctx, productID)
	if err != nil {
		return entity.ModerationCounts{}, fmt.Errorf("failed to read rejection snapshot: %w", err)
	}

	return moderation.Summarize(reviews, removed), nil
}

func (s *ModerationService) revertSnapshot(ctx context.Context, productID string) {
	if err := s.snapshotRepo.RevertRejection(ctx, productID); err != nil {
		logger.Error().Err(err).Str("product_id", productID).Msg("Failed to revert rejection snapshot")
	}
}

func (s *ModerationService) publishEvent(ctx context.Context, eventType string, review *entity.Review) {
	event := entity.ReviewEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		ReviewID:  review.ID.Hex(),
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Status:    review.Status,
		Timestamp: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("review_id", event.ReviewID).Msg("Failed to marshal review event")
		return
	}

	// Отзыв уже изменен, сбой Kafka только логируем
	if err := s.kafkaProducer.PublishMessage(ctx, review.ProductID, payload); err != nil {
		logger.Warn().Err(err).Str("review_id", event.ReviewID).Str("event_type", eventType).Msg("Failed to publish review event")
	}
}
