package entity

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ReviewListResponse - ответ со списком отзывов
type ReviewListResponse struct {
	Reviews    []Review `json:"reviews"`
	Total      int      `json:"total"`
	HasPending bool     `json:"has_pending"`
}

type ModerationSummaryResponse struct {
	ProductID string           `json:"product_id"`
	Counts    ModerationCounts `json:"counts"`
}
