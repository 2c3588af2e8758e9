package service

import (
	"context"

	"storefront/catalog-service/internal/app/catalog/entity"
)

// CategoryAssignerInterface - пакетное назначение новой категории товарам
type CategoryAssignerInterface interface {
	AssignCategoryToProducts(ctx context.Context, input entity.CategoryInput, productIDs []string) (*entity.AssignmentReport, error)
}

type CatalogServiceInterface interface {
	GetAllCategories(ctx context.Context) ([]entity.Category, error)
	GetProductPricing(ctx context.Context, id string) (*entity.ProductPricingResponse, error)
	UpdateProductPricing(ctx context.Context, id string, raw map[string]any) (*entity.ProductPricingResponse, error)
}
