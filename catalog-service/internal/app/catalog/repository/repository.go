package repository

import (
	"context"

	"storefront/catalog-service/internal/app/catalog/entity"
)

const serviceName = "catalog-service"

type CategoryRepository interface {
	// Create сохраняет категорию и заполняет category.ID, выданный хранилищем
	Create(ctx context.Context, category *entity.Category) error
	GetAll(ctx context.Context) ([]entity.Category, error)
}

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetAll(ctx context.Context) ([]entity.Product, error)
	// Update перезаписывает всю изменяемую часть товара и возвращает сохраненную запись
	Update(ctx context.Context, id string, fields entity.ProductFields) (*entity.Product, error)
}
