package entity

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CoerceFloat приводит значение из частично типизированной записи к числу.
// Отсутствующее, нечисловое или бесконечное значение превращается в 0.
func CoerceFloat(v any) float64 {
	var f float64
	switch value := v.(type) {
	case nil:
		return 0
	case float64:
		f = value
	case float32:
		f = float64(value)
	case int:
		f = float64(value)
	case int32:
		f = float64(value)
	case int64:
		f = float64(value)
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// CoerceInt работает как CoerceFloat, дробная часть отбрасывается
func CoerceInt(v any) int {
	if i, ok := v.(int); ok {
		return i
	}
	return int(math.Trunc(CoerceFloat(v)))
}

// CoerceBool понимает bool и строки "true"/"false"; остальное - false
func CoerceBool(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		return err == nil && b
	default:
		return false
	}
}

// ApplyRawFields накладывает частично типизированные поля на текущую запись товара.
// Отсутствующие ключи сохраняют текущее значение, присутствующие приводятся к числу.
func ApplyRawFields(current ProductFields, raw map[string]any) ProductFields {
	fields := current
	if v, ok := raw["price"]; ok {
		fields.Price = CoerceFloat(v)
	}
	if v, ok := raw["discount"]; ok {
		fields.Discount = CoerceFloat(v)
	}
	if v, ok := raw["quantity"]; ok {
		fields.Quantity = CoerceInt(v)
	}
	if v, ok := raw["in_stock"]; ok {
		fields.InStock = CoerceBool(v)
	}
	return fields
}
