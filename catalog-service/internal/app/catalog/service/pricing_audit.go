package service

import (
	"context"
	"fmt"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/pricing"
	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
)

// PricingAuditorInterface - проверка качества ценовых данных всего каталога
type PricingAuditorInterface interface {
	RunAudit(ctx context.Context) (*entity.PricingAuditSummary, error)
}

type PricingAuditor struct {
	productRepo repository.ProductRepository
}

func NewPricingAuditor(productRepo repository.ProductRepository) *PricingAuditor {
	return &PricingAuditor{productRepo: productRepo}
}

// RunAudit рассчитывает цену каждого товара и собирает предупреждения.
// Данные не исправляются, только отчет в логах и метриках.
func (a *PricingAuditor) RunAudit(ctx context.Context) (*entity.PricingAuditSummary, error) {
	products, err := a.productRepo.GetAll(ctx)
	if err != nil {
		metrics.PricingAuditRuns.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to load products for audit: %w", err)
	}

	summary := &entity.PricingAuditSummary{
		Invalid:  make([]string, 0),
		Warnings: make(map[string]int),
	}

	for _, product := range products {
		summary.Checked++

		if _, err := pricing.FinalPrice(product); err != nil {
			summary.Invalid = append(summary.Invalid, product.ID)
			logger.Warn().Err(err).Str("product_id", product.ID).Msg("Product has invalid pricing data")
		}

		for _, w := range pricing.Warnings(product) {
			summary.Warnings[string(w)]++
			metrics.RecordPricingWarning(string(w))
			logger.Debug().Str("product_id", product.ID).Str("warning", string(w)).Msg("Pricing warning")
		}
	}

	metrics.PricingAuditRuns.WithLabelValues("success").Inc()
	logger.Info().
		Int("checked", summary.Checked).
		Int("invalid", len(summary.Invalid)).
		Interface("warnings", summary.Warnings).
		Msg("Pricing audit completed")

	return summary, nil
}
