package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateExpenseRequest represents an expense entry
type CreateExpenseRequest struct {
	CategoryID       uuid.UUID       `json:"category_id" binding:"required"`
	Date             *time.Time      `json:"date"`
	Amount           decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	PaymentMethod    string          `json:"payment_method" binding:"required,max=50"`
	Description      *string         `json:"description"`
	VendorName       *string         `json:"vendor_name" binding:"omitempty,max=255"`
	ReceiptImagePath *string         `json:"receipt_image_path" binding:"omitempty,max=500"`
}

// ExpenseFilterRequest filters the expense listing
type ExpenseFilterRequest struct {
	DateRangeRequest
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
}
