package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/pricing"
	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/catalog-service/internal/app/catalog/util"
	"storefront/pkg/logger"

	"github.com/google/uuid"
)

// CatalogService обрабатывает чтение каталога и изменение цен товаров
// Координирует работу репозиториев, Redis кеша и Kafka producer
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cache        util.RedisCache
	publisher    util.MessagePublisher
	cacheTTL     time.Duration
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cache util.RedisCache,
	publisher util.MessagePublisher,
	cacheTTL time.Duration,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cache,
		publisher:    publisher,
		cacheTTL:     cacheTTL,
	}
}

// GetAllCategories получает все категории с кешированием в Redis
// Сначала проверяет кеш, если нет - загружает из БД и кеширует
func (s *CatalogService) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Categories cache read failed, falling back to database")
	}
	if err == nil && len(categories) > 0 {
		return categories, nil
	}

	categories, err = s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	// Данные получены из БД, проблемы с кешем не критичны
	if err := s.cache.SetCategories(ctx, categories, s.cacheTTL); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache categories")
	}

	return categories, nil
}

// GetProductPricing возвращает товар вместе с рассчитанной ценой
func (s *CatalogService) GetProductPricing(ctx context.Context, id string) (*entity.ProductPricingResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	quote, err := pricing.Quote(*product)
	if err != nil {
		return nil, err
	}

	return &entity.ProductPricingResponse{Product: *product, Pricing: quote}, nil
}

// UpdateProductPricing применяет частично типизированное обновление цены.
// Переданные поля приводятся к числам, отсутствующие остаются как были.
// Результат проверяется до записи: некорректная цена в БД не попадает.
func (s *CatalogService) UpdateProductPricing(ctx context.Context, id string, raw map[string]any) (*entity.ProductPricingResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	fields := entity.ApplyRawFields(product.Fields(), raw)

	candidate := *product
	candidate.Price = fields.Price
	candidate.Discount = fields.Discount
	candidate.Quantity = fields.Quantity
	candidate.InStock = fields.InStock
	if _, err := pricing.FinalPrice(candidate); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	updated, err := s.productRepo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	// Событие нужно только если изменилась цена для покупателя
	if product.Price != updated.Price || product.Discount != updated.Discount {
		s.publishUpdated(ctx, updated)
	}

	quote, err := pricing.Quote(*updated)
	if err != nil {
		return nil, err
	}

	return &entity.ProductPricingResponse{Product: *updated, Pricing: quote}, nil
}

func (s *CatalogService) publishUpdated(ctx context.Context, product *entity.Product) {
	event := entity.ProductEvent{
		EventID:     uuid.NewString(),
		EventType:   entity.EventProductUpdated,
		ProductID:   product.ID,
		Price:       product.Price,
		Discount:    product.Discount,
		CategoryIDs: product.CategoryIDs,
		Timestamp:   time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("product_id", product.ID).Msg("Failed to marshal product event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, product.ID, payload); err != nil {
		logger.Warn().Err(err).Str("product_id", product.ID).Msg("Failed to publish PRODUCT_UPDATED event")
	}
}
