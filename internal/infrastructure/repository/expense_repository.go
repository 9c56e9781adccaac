package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) domainRepo.ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) CreateCategory(ctx context.Context, category *entity.ExpenseCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *expenseRepository) GetCategory(ctx context.Context, ownerID, id uuid.UUID) (*entity.ExpenseCategory, error) {
	var category entity.ExpenseCategory
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &category, err
}

func (r *expenseRepository) ListActiveCategories(ctx context.Context, ownerID uuid.UUID) ([]entity.ExpenseCategory, error) {
	var categories []entity.ExpenseCategory
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *expenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Expense, error) {
	var expense entity.Expense
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Preload("Category").
		First(&expense, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &expense, err
}

func (r *expenseRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Delete(&entity.Expense{}, "id = ?", id).Error
}

func (r *expenseRepository) List(ctx context.Context, ownerID uuid.UUID, params *domainRepo.ExpenseFilterParams) ([]entity.Expense, int64, error) {
	var expenses []entity.Expense
	var total int64

	query := r.db.WithContext(ctx).
		Model(&entity.Expense{}).
		Scopes(OwnerScope(ownerID), HalfOpen("date", params.Start, params.End))
	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Normalize()
	err := query.
		Preload("Category").
		Order("date DESC").
		Offset(params.Pagination.Offset()).
		Limit(params.Pagination.PageSize).
		Find(&expenses).Error

	return expenses, total, err
}

func (r *expenseRepository) Sum(ctx context.Context, ownerID uuid.UUID, filter domainRepo.ExpenseSumFilter) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).
		Model(&entity.Expense{}).
		Scopes(OwnerScope(ownerID), HalfOpen("date", filter.Start, filter.End))
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	var total decimal.NullDecimal
	if err := query.Select("SUM(amount)").Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *expenseRepository) TopCategories(ctx context.Context, ownerID uuid.UUID, start, end time.Time, limit int) ([]domainRepo.CategoryTotal, error) {
	var results []domainRepo.CategoryTotal

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			e.category_id AS category_id,
			COALESCE(c.name, 'Unknown') AS category_name,
			COALESCE(SUM(e.amount), 0) AS total,
			COUNT(e.id) AS count
		FROM expenses e
		LEFT JOIN expense_categories c ON c.id = e.category_id
		WHERE e.user_id = ? AND e.date >= ? AND e.date < ?
		GROUP BY e.category_id, c.name
		ORDER BY total DESC
		LIMIT ?
	`, ownerID, start, end, limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *expenseRepository) ListDatedBetween(ctx context.Context, ownerID *uuid.UUID, start, end time.Time) ([]entity.Expense, error) {
	var expenses []entity.Expense
	err := r.db.WithContext(ctx).
		Scopes(OptionalOwnerScope(ownerID), HalfOpen("date", &start, &end)).
		Preload("Category").
		Order("date ASC").
		Find(&expenses).Error
	return expenses, err
}
