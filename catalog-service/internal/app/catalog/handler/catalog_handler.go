package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/pricing"
	"storefront/catalog-service/internal/app/catalog/service"
	"storefront/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CatalogHandler обрабатывает HTTP запросы для каталога
type CatalogHandler struct {
	catalogService service.CatalogServiceInterface
	assigner       service.CategoryAssignerInterface
	validator      *validator.Validate
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(catalogService service.CatalogServiceInterface, assigner service.CategoryAssignerInterface) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		assigner:       assigner,
		validator:      validator.New(),
	}
}

// GetAllCategories обрабатывает GET /categories (с кешированием)
func (h *CatalogHandler) GetAllCategories(c *gin.Context) {
	categories, err := h.catalogService.GetAllCategories(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get categories")
		respondError(c, http.StatusInternalServerError, "Failed to get categories")
		return
	}

	c.JSON(http.StatusOK, entity.CategoryListResponse{
		Categories: categories,
		Total:      len(categories),
	})
}

// AssignCategory обрабатывает POST /categories/assignments.
// Частичный успех возвращается как 201 с partial=true и полным отчетом.
func (h *CatalogHandler) AssignCategory(c *gin.Context) {
	var req entity.CreateCategoryAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	input := entity.CategoryInput{CategoryName: req.CategoryName, Description: req.Description}
	report, err := h.assigner.AssignCategoryToProducts(c.Request.Context(), input, req.ProductIDs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrCategoryCreation):
			logger.Error().Err(err).Str("category_name", req.CategoryName).Msg("Category creation failed")
			respondError(c, http.StatusBadGateway, "Failed to create category")
		default:
			logger.Error().Err(err).Str("category_name", req.CategoryName).Msg("Category assignment aborted")
			respondError(c, http.StatusInternalServerError, "Failed to assign category")
		}
		return
	}

	message := "Category assigned"
	switch {
	case report.IsPartialSuccess():
		message = "Category assigned to some products"
	case report.FailedCount > 0:
		message = "Category created, no products updated"
	}

	c.JSON(http.StatusCreated, entity.AssignmentResponse{
		Message: message,
		Partial: report.IsPartialSuccess(),
		Report:  report,
	})
}

// GetProductPricing обрабатывает GET /products/:id/pricing
func (h *CatalogHandler) GetProductPricing(c *gin.Context) {
	resp, err := h.catalogService.GetProductPricing(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondPricingError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateProductPricing обрабатывает PATCH /products/:id/pricing.
// Тело - произвольный JSON объект, числа приводятся на стороне сервиса.
func (h *CatalogHandler) UpdateProductPricing(c *gin.Context) {
	var raw map[string]any
	decoder := json.NewDecoder(c.Request.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil || raw == nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.catalogService.UpdateProductPricing(c.Request.Context(), c.Param("id"), raw)
	if err != nil {
		h.respondPricingError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) respondPricingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, service.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, pricing.ErrInvalidInput):
		// В БД уже лежат некорректные цена или скидка, их покажет аудит
		respondError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error().Err(err).Str("product_id", c.Param("id")).Msg("Pricing request failed")
		respondError(c, http.StatusInternalServerError, "Failed to process pricing")
	}
}

// respondError отправляет ответ об ошибке
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// formatValidationError форматирует ошибки валидации
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return validationErrors[0].Field() + " validation failed"
	}
	return "Validation failed"
}
