package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpenseCategory classifies expenses. Deleting one only deactivates it,
// so existing expenses keep their reference.
type ExpenseCategory struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description *string   `gorm:"size:255" json:"description,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new expense category
func (c *ExpenseCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ExpenseCategory model
func (ExpenseCategory) TableName() string {
	return "expense_categories"
}

// Expense is money spent by the restaurant
type Expense struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Date             time.Time       `gorm:"type:timestamptz;not null;index" json:"date"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	PaymentMethod    string          `gorm:"size:50;not null" json:"payment_method"`
	Description      *string         `gorm:"size:500" json:"description,omitempty"`
	VendorName       *string         `gorm:"size:255" json:"vendor_name,omitempty"`
	ReceiptImagePath *string         `gorm:"size:500" json:"receipt_image_path,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`

	// Relationships
	Category *ExpenseCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BeforeCreate generates a UUID before creating a new expense
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Expense model
func (Expense) TableName() string {
	return "expenses"
}

// CategoryName returns the category name or "Unknown" when it is not loaded
func (e *Expense) CategoryName() string {
	if e.Category == nil || e.Category.Name == "" {
		return "Unknown"
	}
	return e.Category.Name
}
