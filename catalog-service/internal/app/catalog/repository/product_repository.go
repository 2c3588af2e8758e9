package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/pkg/metrics"

	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// GetByID получает товар по ID
func (r *productRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "products")
	defer timer.ObserveDuration()

	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get product: %w", result.Error)
	}

	return &product, nil
}

// GetAll получает все товары, новые первыми
func (r *productRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "products")
	defer timer.ObserveDuration()

	var products []entity.Product
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&products).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return products, nil
}

// Update перезаписывает цену, скидку, остаток и категории товара.
// Нулевые значения тоже пишутся: колонки перечислены явно через Select.
func (r *productRepository) Update(ctx context.Context, id string, fields entity.ProductFields) (*entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "products")
	defer timer.ObserveDuration()

	values := entity.Product{
		Price:       fields.Price,
		Discount:    fields.Discount,
		Quantity:    fields.Quantity,
		InStock:     fields.InStock,
		CategoryIDs: fields.CategoryIDs,
	}

	var updated entity.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Product{}).
			Where("id = ?", id).
			Select("price", "discount", "quantity", "in_stock", "category_ids").
			Updates(&values)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}

		return tx.Where("id = ?", id).Find(&updated).Error
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &updated, nil
}
