package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultPlatform is the sales channel for walk-in orders
const DefaultPlatform = "Direct"

// Bill is an immutable record of a completed sale.
// TokenNumber is a dense per-owner counter that restarts at local midnight.
type Bill struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_bills_user_bill_number,priority:1;index:idx_bills_user_created,priority:1" json:"user_id"`
	TokenNumber   int             `gorm:"not null" json:"token_number"`
	BillNumber    string          `gorm:"size:50;not null;uniqueIndex:idx_bills_user_bill_number,priority:2" json:"bill_number"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"subtotal"`
	GST           decimal.Decimal `gorm:"column:gst;type:decimal(18,2);not null;default:0" json:"gst"`
	ServiceCharge decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"service_charge"`
	Total         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total"`
	PaymentMethod string          `gorm:"size:50;not null" json:"payment_method"`
	Platform      string          `gorm:"size:50;not null;default:'Direct'" json:"platform"`
	CustomerName  *string         `gorm:"size:255" json:"customer_name,omitempty"`
	CustomerPhone *string         `gorm:"size:50" json:"customer_phone,omitempty"`
	CreatedAt     time.Time       `gorm:"type:timestamptz;not null;index:idx_bills_user_created,priority:2" json:"created_at"`

	// Relationships
	Items []BillItem `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new bill
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// BillItem is a snapshot of a product at the time of sale
type BillItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BillID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Total       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total"`
	CreatedAt   time.Time       `gorm:"type:timestamptz" json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new bill item
func (i *BillItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillItem model
func (BillItem) TableName() string {
	return "bill_items"
}
