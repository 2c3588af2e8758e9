package handler

import (
	"errors"
	"net/http"

	"storefront/pkg/auth"
	"storefront/pkg/logger"
	"storefront/reviews-service/internal/app/reviews/entity"
	"storefront/reviews-service/internal/app/reviews/moderation"
	"storefront/reviews-service/internal/app/reviews/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	moderationService service.ModerationServiceInterface
}

func NewReviewHandler(moderationService service.ModerationServiceInterface) *ReviewHandler {
	return &ReviewHandler{moderationService: moderationService}
}

func (h *ReviewHandler) GetReviewsByProduct(c *gin.Context) {
	productID := c.Param("product_id")

	reviews, err := h.moderationService.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		logger.Error().Err(err).Str("product_id", productID).Msg("Failed to list reviews")
		respondError(c, http.StatusInternalServerError, "Failed to get reviews")
		return
	}

	c.JSON(http.StatusOK, entity.ReviewListResponse{
		Reviews:    reviews,
		Total:      len(reviews),
		HasPending: moderation.HasPending(reviews),
	})
}

func (h *ReviewHandler) GetModerationSummary(c *gin.Context) {
	productID := c.Param("product_id")

	counts, err := h.moderationService.Counts(c.Request.Context(), productID)
	if err != nil {
		logger.Error().Err(err).Str("product_id", productID).Msg("Failed to count reviews")
		respondError(c, http.StatusInternalServerError, "Failed to get moderation summary")
		return
	}

	c.JSON(http.StatusOK, entity.ModerationSummaryResponse{ProductID: productID, Counts: counts})
}

func (h *ReviewHandler) ApproveReview(c *gin.Context) {
	reviewID := c.Param("review_id")

	review, err := h.moderationService.Approve(c.Request.Context(), reviewID)
	if err != nil {
		h.respondModerationError(c, reviewID, err)
		return
	}

	logger.Info().Str("review_id", reviewID).Str("moderator_id", auth.UserIDFromContext(c)).Msg("Review approved")
	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Review approved", Data: review})
}

// RejectReview обрабатывает DELETE /reviews/:review_id
// Отклоненный отзыв удаляется; повторный запрос тоже успешен
func (h *ReviewHandler) RejectReview(c *gin.Context) {
	reviewID := c.Param("review_id")

	if err := h.moderationService.Reject(c.Request.Context(), reviewID); err != nil {
		h.respondModerationError(c, reviewID, err)
		return
	}

	logger.Info().Str("review_id", reviewID).Str("moderator_id", auth.UserIDFromContext(c)).Msg("Review rejected")
	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Review rejected"})
}

func (h *ReviewHandler) respondModerationError(c *gin.Context, reviewID string, err error) {
	switch {
	case errors.Is(err, service.ErrReviewNotFound):
		respondError(c, http.StatusNotFound, "Review not found")
	case errors.Is(err, service.ErrIllegalTransition):
		respondError(c, http.StatusConflict, err.Error())
	default:
		logger.Error().Err(err).Str("review_id", reviewID).Msg("Moderation failed")
		respondError(c, http.StatusInternalServerError, "Failed to moderate review")
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
