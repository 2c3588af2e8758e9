package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/catalog-service/internal/app/catalog/util"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const productNotFoundDetail = "product not found"

// CategoryAssigner создает категорию и добавляет ее в набор категорий каждого выбранного товара.
// Ошибки по отдельным товарам не прерывают пакет и попадают в отчет.
type CategoryAssigner struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cache        util.RedisCache
	publisher    util.MessagePublisher
	concurrency  int // 1 - товары обрабатываются строго по очереди
}

func NewCategoryAssigner(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cache util.RedisCache,
	publisher util.MessagePublisher,
	concurrency int,
) *CategoryAssigner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &CategoryAssigner{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cache,
		publisher:    publisher,
		concurrency:  concurrency,
	}
}

// AssignCategoryToProducts создает категорию и назначает ее товарам.
// Ошибка возвращается только до начала пакета: пустое имя, сбой создания категории
// или категория без ID. Все, что случилось с отдельными товарами, описано в отчете.
func (a *CategoryAssigner) AssignCategoryToProducts(ctx context.Context, input entity.CategoryInput, productIDs []string) (*entity.AssignmentReport, error) {
	name := strings.TrimSpace(input.CategoryName)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}

	category := &entity.Category{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}
	if err := a.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCategoryCreation, err)
	}
	if category.ID == "" {
		return nil, ErrInvariantViolation
	}
	metrics.CategoriesCreated.Inc()

	// Список категорий изменился, кеш больше не актуален
	if err := a.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Str("category_id", category.ID).Msg("Failed to invalidate categories cache")
	}

	ids := uniqueProductIDs(productIDs)
	outcomes := make([]entity.AssignmentOutcome, len(ids))

	if a.concurrency == 1 || len(ids) < 2 {
		for i, productID := range ids {
			outcomes[i] = a.assignOne(ctx, category.ID, productID)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(a.concurrency)
		for i, productID := range ids {
			g.Go(func() error {
				outcomes[i] = a.assignOne(ctx, category.ID, productID)
				return nil
			})
		}
		_ = g.Wait()
	}

	report := entity.NewAssignmentReport(category.ID, outcomes)

	logger.Info().
		Str("category_id", category.ID).
		Str("category_name", category.Name).
		Int("requested", len(ids)).
		Int("success", report.SuccessCount).
		Int("skipped", report.SkippedCount).
		Int("failed", report.FailedCount).
		Msg("Category assignment finished")

	return report, nil
}

// assignOne обрабатывает один товар и никогда не возвращает ошибку наружу
func (a *CategoryAssigner) assignOne(ctx context.Context, categoryID, productID string) entity.AssignmentOutcome {
	// После отмены оставшиеся товары не трогаем, но в отчет они попадают
	if err := ctx.Err(); err != nil {
		return a.outcome(productID, entity.AssignmentFailed, err.Error())
	}

	product, err := a.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return a.outcome(productID, entity.AssignmentFailed, productNotFoundDetail)
		}
		return a.outcome(productID, entity.AssignmentFailed, err.Error())
	}

	if product.HasCategory(categoryID) {
		return a.outcome(productID, entity.AssignmentSkippedAlreadyMember, "")
	}

	fields := product.Fields()
	fields.CategoryIDs = entity.UnionCategoryIDs(fields.CategoryIDs, []string{categoryID})

	if _, err := a.productRepo.Update(ctx, productID, fields); err != nil {
		logger.Warn().Err(err).Str("product_id", productID).Str("category_id", categoryID).Msg("Failed to assign category to product")
		return a.outcome(productID, entity.AssignmentFailed, err.Error())
	}

	a.publishAssigned(ctx, productID, categoryID, fields)
	return a.outcome(productID, entity.AssignmentSuccess, "")
}

func (a *CategoryAssigner) outcome(productID string, status entity.AssignmentStatus, detail string) entity.AssignmentOutcome {
	metrics.RecordAssignmentOutcome(string(status))
	return entity.AssignmentOutcome{
		ProductID:   productID,
		Status:      status,
		ErrorDetail: detail,
	}
}

// publishAssigned отправляет событие в Kafka; сбой отправки только логируется
func (a *CategoryAssigner) publishAssigned(ctx context.Context, productID, categoryID string, fields entity.ProductFields) {
	event := entity.ProductEvent{
		EventID:     uuid.NewString(),
		EventType:   entity.EventProductCategoryAssigned,
		ProductID:   productID,
		Price:       fields.Price,
		Discount:    fields.Discount,
		CategoryIDs: fields.CategoryIDs,
		CategoryID:  categoryID,
		Timestamp:   time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("product_id", productID).Msg("Failed to marshal product event")
		return
	}

	if err := a.publisher.PublishMessage(ctx, productID, payload); err != nil {
		logger.Warn().Err(err).Str("product_id", productID).Str("event_type", event.EventType).Msg("Failed to publish product event")
	}
}

// uniqueProductIDs убирает повторы, сохраняя порядок первого появления
func uniqueProductIDs(ids []string) []string {
	result := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
