package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ErrDuplicateBillNumber is returned by Create when the owner already has a
// bill with the same number
var ErrDuplicateBillNumber = errors.New("duplicate bill number")

// BillRepository defines the interface for bill data operations.
// Time bounds are absolute instants; the range is half-open [Start, End).
type BillRepository interface {
	// Create inserts the bill and its items in one transaction
	Create(ctx context.Context, bill *entity.Bill) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Bill, error)
	List(ctx context.Context, ownerID uuid.UUID, params *BillFilterParams) ([]entity.Bill, int64, error)
	CountCreatedBetween(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (int64, error)
	ListCreatedBetween(ctx context.Context, filter BillWindowFilter) ([]entity.Bill, error)
}

// BillFilterParams contains filtering parameters for bill listing
type BillFilterParams struct {
	Pagination pagination.Params
	Start      *time.Time
	End        *time.Time
}

// BillWindowFilter selects bills created inside a window. A nil OwnerID
// selects bills of every owner.
type BillWindowFilter struct {
	OwnerID   *uuid.UUID
	Start     time.Time
	End       time.Time
	WithItems bool
}

// ItemSales is a best-seller row
type ItemSales struct {
	ProductName string
	Quantity    int64
	Revenue     decimal.Decimal
}

// SalesAnalyticsRepository defines aggregation queries over bills
type SalesAnalyticsRepository interface {
	// BestSellers groups bill items by product name, ordered by quantity sold
	BestSellers(ctx context.Context, ownerID uuid.UUID, start, end time.Time, limit int) ([]ItemSales, error)
}
