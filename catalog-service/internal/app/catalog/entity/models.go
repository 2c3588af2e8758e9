package entity

import (
	"slices"
	"time"
)

// Category представляет категорию товаров
// ID выдается слоем хранения при создании, клиент его не генерирует
type Category struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"category_name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CategoryInput - данные для создания категории
type CategoryInput struct {
	CategoryName string
	Description  string
}

// Product представляет товар в каталоге
type Product struct {
	ID          string    `json:"id" gorm:"column:id;primaryKey"`
	Name        string    `json:"name" gorm:"column:name"`
	Price       float64   `json:"price" gorm:"column:price"`       // Цена в базовой валюте
	Discount    float64   `json:"discount" gorm:"column:discount"` // Абсолютная скидка в валюте, не процент
	Quantity    int       `json:"quantity" gorm:"column:quantity"`
	InStock     bool      `json:"in_stock" gorm:"column:in_stock"` // Не выводится из Quantity автоматически
	CategoryIDs []string  `json:"category_ids" gorm:"column:category_ids;serializer:json"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Product) TableName() string {
	return "products"
}

// HasCategory проверяет принадлежность товара категории
func (p *Product) HasCategory(categoryID string) bool {
	return slices.Contains(p.CategoryIDs, categoryID)
}

// ProductFields - полная записываемая часть товара
// Передается в ProductRepository.Update целиком
type ProductFields struct {
	Price       float64
	Discount    float64
	Quantity    int
	InStock     bool
	CategoryIDs []string
}

// Fields собирает запись для обновления с приведением числовых полей
func (p *Product) Fields() ProductFields {
	return ProductFields{
		Price:       CoerceFloat(p.Price),
		Discount:    CoerceFloat(p.Discount),
		Quantity:    CoerceInt(p.Quantity),
		InStock:     p.InStock,
		CategoryIDs: UnionCategoryIDs(p.CategoryIDs),
	}
}

// UnionCategoryIDs объединяет наборы категорий без дублей, сохраняя порядок первого появления
func UnionCategoryIDs(sets ...[]string) []string {
	result := make([]string, 0)
	seen := make(map[string]struct{})
	for _, set := range sets {
		for _, id := range set {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			result = append(result, id)
		}
	}
	return result
}

// AssignmentStatus - исход назначения категории одному товару
type AssignmentStatus string

const (
	AssignmentSuccess              AssignmentStatus = "success"
	AssignmentSkippedAlreadyMember AssignmentStatus = "skipped_already_member"
	AssignmentFailed               AssignmentStatus = "failed"
)

// AssignmentOutcome существует только в рамках одного вызова координатора
type AssignmentOutcome struct {
	ProductID   string           `json:"product_id"`
	Status      AssignmentStatus `json:"status"`
	ErrorDetail string           `json:"error_detail,omitempty"`
}

// AssignmentReport - сводка пакетного назначения категории
// Outcomes идут в порядке входных ID
type AssignmentReport struct {
	CreatedCategoryID string              `json:"created_category_id"`
	SuccessCount      int                 `json:"success_count"`
	SkippedCount      int                 `json:"skipped_count"`
	FailedCount       int                 `json:"failed_count"`
	Failures          []AssignmentOutcome `json:"failures"`
	Outcomes          []AssignmentOutcome `json:"outcomes"`
}

// NewAssignmentReport сворачивает исходы в сводку
func NewAssignmentReport(categoryID string, outcomes []AssignmentOutcome) *AssignmentReport {
	report := &AssignmentReport{
		CreatedCategoryID: categoryID,
		Failures:          make([]AssignmentOutcome, 0),
		Outcomes:          outcomes,
	}

	for _, outcome := range outcomes {
		switch outcome.Status {
		case AssignmentSuccess:
			report.SuccessCount++
		case AssignmentSkippedAlreadyMember:
			report.SkippedCount++
		case AssignmentFailed:
			report.FailedCount++
			report.Failures = append(report.Failures, outcome)
		}
	}

	return report
}

// IsPartialSuccess - часть товаров получила категорию, часть нет.
// Такой результат показывается как успех с оговоркой, а не как ошибка.
func (r *AssignmentReport) IsPartialSuccess() bool {
	return r.SuccessCount > 0 && r.FailedCount > 0
}

// ProductEvent представляет событие изменения товара для Kafka
type ProductEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"` // PRODUCT_UPDATED, PRODUCT_CATEGORY_ASSIGNED
	ProductID   string    `json:"product_id"`
	Price       float64   `json:"price"`
	Discount    float64   `json:"discount"`
	CategoryIDs []string  `json:"category_ids"`
	CategoryID  string    `json:"category_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

const (
	EventProductUpdated          = "PRODUCT_UPDATED"
	EventProductCategoryAssigned = "PRODUCT_CATEGORY_ASSIGNED"
)

// PricingAuditSummary - результат одного прогона аудита цен
type PricingAuditSummary struct {
	Checked  int            `json:"checked"`
	Invalid  []string       `json:"invalid"`  // товары, для которых цену посчитать нельзя
	Warnings map[string]int `json:"warnings"` // вид предупреждения -> количество товаров
}
