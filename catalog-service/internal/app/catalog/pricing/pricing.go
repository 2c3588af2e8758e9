// Package pricing вычисляет производные значения цены товара.
// Все функции чистые: без состояния и без обращений к хранилищу.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"storefront/catalog-service/internal/app/catalog/entity"

	"github.com/shopspring/decimal"
)

var ErrInvalidInput = errors.New("invalid pricing input")

// Warning - замечание о качестве данных товара, цену не блокирует
type Warning string

const (
	WarningZeroPriceWithDiscount Warning = "zero_price_with_discount"
	WarningStockFlagMismatch     Warning = "stock_flag_mismatch"
)

var hundred = decimal.NewFromInt(100)

// FinalPrice возвращает цену со скидкой, округленную до двух знаков
func FinalPrice(p entity.Product) (float64, error) {
	if err := validate(p); err != nil {
		return 0, err
	}

	price := decimal.NewFromFloat(p.Price)
	if p.Discount > 0 {
		price = price.Sub(decimal.NewFromFloat(p.Discount))
	}
	return round2(price), nil
}

// DiscountPercentage - доля скидки от цены в целых процентах.
// Для нулевой цены всегда 0, деления на ноль не происходит.
func DiscountPercentage(p entity.Product) int {
	if !finite(p.Price) || !finite(p.Discount) {
		return 0
	}
	if p.Discount <= 0 || p.Price <= 0 {
		return 0
	}

	ratio := decimal.NewFromFloat(p.Discount).
		Div(decimal.NewFromFloat(p.Price)).
		Mul(hundred).
		Round(0)
	return int(ratio.IntPart())
}

func HasDiscount(p entity.Product) bool {
	return p.Discount > 0
}

// DiscountAmount - абсолютная скидка для отображения
func DiscountAmount(p entity.Product) float64 {
	if !HasDiscount(p) || !finite(p.Discount) {
		return 0
	}
	return round2(decimal.NewFromFloat(p.Discount))
}

// Sellable - товар можно купить только при выставленном флаге и ненулевом остатке
func Sellable(p entity.Product) bool {
	return p.InStock && p.Quantity > 0
}

// Warnings собирает замечания о качестве данных товара
func Warnings(p entity.Product) []Warning {
	var warnings []Warning
	if p.Price == 0 && p.Discount > 0 {
		warnings = append(warnings, WarningZeroPriceWithDiscount)
	}
	if p.InStock != (p.Quantity > 0) {
		warnings = append(warnings, WarningStockFlagMismatch)
	}
	return warnings
}

// Quote собирает все производные значения цены в одну структуру
func Quote(p entity.Product) (entity.PricingQuote, error) {
	final, err := FinalPrice(p)
	if err != nil {
		return entity.PricingQuote{}, err
	}

	quote := entity.PricingQuote{
		Price:              round2(decimal.NewFromFloat(p.Price)),
		FinalPrice:         final,
		DiscountAmount:     DiscountAmount(p),
		DiscountPercentage: DiscountPercentage(p),
		HasDiscount:        HasDiscount(p),
		Sellable:           Sellable(p),
	}
	for _, w := range Warnings(p) {
		quote.Warnings = append(quote.Warnings, string(w))
	}

	return quote, nil
}

func validate(p entity.Product) error {
	if !finite(p.Price) || p.Price < 0 {
		return fmt.Errorf("%w: price %v", ErrInvalidInput, p.Price)
	}
	if !finite(p.Discount) || p.Discount < 0 {
		return fmt.Errorf("%w: discount %v", ErrInvalidInput, p.Discount)
	}
	if p.Discount > p.Price {
		return fmt.Errorf("%w: discount %v exceeds price %v", ErrInvalidInput, p.Discount, p.Price)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
