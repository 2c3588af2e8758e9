package entity

type CreateCategoryAssignmentRequest struct {
	CategoryName string   `json:"category_name" validate:"required,max=100"`
	Description  string   `json:"description" validate:"max=2000"`
	ProductIDs   []string `json:"product_ids" validate:"max=500,dive,required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}

// AssignmentResponse - частичный успех отдается как успех с флагом partial
type AssignmentResponse struct {
	Message string            `json:"message"`
	Partial bool              `json:"partial"`
	Report  *AssignmentReport `json:"report"`
}

type ProductPricingResponse struct {
	Product Product      `json:"product"`
	Pricing PricingQuote `json:"pricing"`
}

// PricingQuote - производные значения цены для отображения
type PricingQuote struct {
	Price              float64  `json:"price"`
	FinalPrice         float64  `json:"final_price"`
	DiscountAmount     float64  `json:"discount_amount"`
	DiscountPercentage int      `json:"discount_percentage"`
	HasDiscount        bool     `json:"has_discount"`
	Sellable           bool     `json:"sellable"`
	Warnings           []string `json:"warnings,omitempty"`
}
