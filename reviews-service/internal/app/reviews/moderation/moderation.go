// Package moderation описывает состояния модерации отзыва и допустимые переходы.
package moderation

import (
	"strings"

	"storefront/reviews-service/internal/app/reviews/entity"
)

// Classify выводит состояние отзыва из флага одобрения и комментария.
// Отсутствующий флаг считается false; пустой комментарий без одобрения - отклонение.
func Classify(approved *bool, comment *string) entity.ModerationStatus {
	if approved != nil && *approved {
		return entity.StatusApproved
	}
	if comment == nil || strings.TrimSpace(*comment) == "" {
		return entity.StatusRejected
	}
	return entity.StatusPending
}

// Apply заполняет Status у отзывов, прочитанных из хранилища
func Apply(reviews []entity.Review) {
	for i := range reviews {
		reviews[i].Status = Classify(reviews[i].Approved, reviews[i].Comment)
	}
}

// CanApprove - одобрить можно только ожидающий отзыв; повторное одобрение допустимо как no-op
func CanApprove(status entity.ModerationStatus) bool {
	return status == entity.StatusPending || status == entity.StatusApproved
}

// CanReject - одобренный отзыв назад не отклоняется
func CanReject(status entity.ModerationStatus) bool {
	return status != entity.StatusApproved
}

func HasPending(reviews []entity.Review) bool {
	for _, r := range reviews {
		if r.Status == entity.StatusPending {
			return true
		}
	}
	return false
}

// Summarize считает отзывы по состояниям.
// removedRejected - отклонения, учтенные до удаления отзывов.
func Summarize(reviews []entity.Review, removedRejected int) entity.ModerationCounts {
	var counts entity.ModerationCounts
	for _, r := range reviews {
		switch r.Status {
		case entity.StatusPending:
			counts.Pending++
		case entity.StatusApproved:
			counts.Approved++
		case entity.StatusRejected:
			counts.Rejected++
		}
	}

	if removedRejected > 0 {
		counts.Rejected += removedRejected
	}
	counts.Total = counts.Pending + counts.Approved + counts.Rejected
	counts.HasPending = counts.Pending > 0

	return counts
}
