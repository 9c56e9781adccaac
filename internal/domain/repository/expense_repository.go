package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ExpenseRepository defines the interface for expense data operations
type ExpenseRepository interface {
	CreateCategory(ctx context.Context, category *entity.ExpenseCategory) error
	GetCategory(ctx context.Context, ownerID, id uuid.UUID) (*entity.ExpenseCategory, error)
	ListActiveCategories(ctx context.Context, ownerID uuid.UUID) ([]entity.ExpenseCategory, error)

	Create(ctx context.Context, expense *entity.Expense) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Expense, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, params *ExpenseFilterParams) ([]entity.Expense, int64, error)
	Sum(ctx context.Context, ownerID uuid.UUID, filter ExpenseSumFilter) (decimal.Decimal, error)
	TopCategories(ctx context.Context, ownerID uuid.UUID, start, end time.Time, limit int) ([]CategoryTotal, error)
	// ListDatedBetween returns expenses with their category dated in [start, end).
	// A nil ownerID selects every owner.
	ListDatedBetween(ctx context.Context, ownerID *uuid.UUID, start, end time.Time) ([]entity.Expense, error)
}

// ExpenseFilterParams contains filtering parameters for expense listing
type ExpenseFilterParams struct {
	Pagination pagination.Params
	Start      *time.Time
	End        *time.Time
	CategoryID *uuid.UUID
}

// ExpenseSumFilter bounds an expense total; nil fields are unbounded
type ExpenseSumFilter struct {
	Start      *time.Time
	End        *time.Time
	CategoryID *uuid.UUID
}

// CategoryTotal is the amount spent in one category
type CategoryTotal struct {
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
	Count        int64           `json:"count"`
}
