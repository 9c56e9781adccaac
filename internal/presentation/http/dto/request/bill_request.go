package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillItemRequest is one line of a bill as rung up at the till
type BillItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Name      string          `json:"name" binding:"required,max=255"`
	Price     decimal.Decimal `json:"price" binding:"decimal_gte0"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	Total     decimal.Decimal `json:"total" binding:"decimal_gte0"`
}

// CreateBillRequest represents a bill submission
type CreateBillRequest struct {
	Items         []BillItemRequest `json:"items" binding:"required,min=1,dive"`
	Subtotal      decimal.Decimal   `json:"subtotal" binding:"decimal_gte0"`
	GST           decimal.Decimal   `json:"gst" binding:"decimal_gte0"`
	ServiceCharge decimal.Decimal   `json:"service_charge" binding:"decimal_gte0"`
	Total         decimal.Decimal   `json:"total" binding:"decimal_gte0"`
	PaymentMethod string            `json:"payment_method" binding:"required,max=50"`
	Platform      string            `json:"platform" binding:"max=50"`
	CustomerName  *string           `json:"customer_name" binding:"omitempty,max=255"`
	CustomerPhone *string           `json:"customer_phone" binding:"omitempty,max=50"`
	Date          *time.Time        `json:"date"`
}
