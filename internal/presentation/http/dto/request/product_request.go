package request

import "github.com/shopspring/decimal"

// ProductRequest represents a product create or update request
type ProductRequest struct {
	Name       string          `json:"name" binding:"required,max=255"`
	Price      decimal.Decimal `json:"price" binding:"decimal_gte0"`
	Category   string          `json:"category" binding:"max=100"`
	IsFavorite bool            `json:"is_favorite"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search    string `form:"search"`
	Category  string `form:"category"`
	Favorites bool   `form:"favorites"`
}

// CategoryRequest names a product or expense category
type CategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description"`
}
