package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/restopos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) domainRepo.BillRepository {
	return &billRepository{db: db}
}

// Create relies on gorm's association saving to insert the items in the same transaction
func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	err := r.db.WithContext(ctx).Create(bill).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainRepo.ErrDuplicateBillNumber
	}
	return err
}

func (r *billRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Preload("Items").
		First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *billRepository) List(ctx context.Context, ownerID uuid.UUID, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := r.db.WithContext(ctx).
		Model(&entity.Bill{}).
		Scopes(OwnerScope(ownerID), HalfOpen("created_at", params.Start, params.End))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Normalize()
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(params.Pagination.Offset()).
		Limit(params.Pagination.PageSize).
		Find(&bills).Error

	return bills, total, err
}

func (r *billRepository) CountCreatedBetween(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Bill{}).
		Scopes(OwnerScope(ownerID), HalfOpen("created_at", &start, &end)).
		Count(&count).Error
	return count, err
}

func (r *billRepository) ListCreatedBetween(ctx context.Context, filter domainRepo.BillWindowFilter) ([]entity.Bill, error) {
	query := r.db.WithContext(ctx).
		Scopes(OptionalOwnerScope(filter.OwnerID), HalfOpen("created_at", &filter.Start, &filter.End))
	if filter.WithItems {
		query = query.Preload("Items")
	}

	var bills []entity.Bill
	err := query.Order("created_at ASC").Find(&bills).Error
	return bills, err
}
