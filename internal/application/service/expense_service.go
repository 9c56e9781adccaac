package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sangkips/restopos-api/pkg/apperror"
	"github.com/sangkips/restopos-api/pkg/clock"
	"github.com/sangkips/restopos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

const topExpenseCategories = 5

// ExpenseService handles expense-related operations
type ExpenseService struct {
	expenses repository.ExpenseRepository
	clock    *clock.Clock
}

// NewExpenseService creates a new expense service
func NewExpenseService(expenses repository.ExpenseRepository, clk *clock.Clock) *ExpenseService {
	return &ExpenseService{expenses: expenses, clock: clk}
}

// ListCategories returns the owner's active expense categories
func (s *ExpenseService) ListCategories(ctx context.Context, ownerID uuid.UUID) ([]entity.ExpenseCategory, error) {
	return s.expenses.ListActiveCategories(ctx, ownerID)
}

// CreateCategoryInput represents the create expense category input
type CreateCategoryInput struct {
	UserID      uuid.UUID
	Name        string
	Description *string
}

// CreateCategory creates an expense category
func (s *ExpenseService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*entity.ExpenseCategory, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewBadRequestError("Category name is required")
	}
	category := &entity.ExpenseCategory{
		UserID:      input.UserID,
		Name:        name,
		Description: input.Description,
		IsActive:    true,
	}
	if err := s.expenses.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// CreateExpenseInput represents the create expense input
type CreateExpenseInput struct {
	UserID           uuid.UUID
	CategoryID       uuid.UUID
	Date             *time.Time
	Amount           decimal.Decimal
	PaymentMethod    string
	Description      *string
	VendorName       *string
	ReceiptImagePath *string
}

// CreateExpense records an expense against one of the owner's categories
func (s *ExpenseService) CreateExpense(ctx context.Context, input *CreateExpenseInput) (*entity.Expense, error) {
	if !input.Amount.IsPositive() {
		return nil, apperror.NewBadRequestError("Amount must be greater than zero")
	}

	category, err := s.expenses.GetCategory(ctx, input.UserID, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Category")
	}

	date := s.clock.NowLocal()
	if input.Date != nil && !input.Date.IsZero() {
		date = s.clock.ToLocal(*input.Date)
	}

	expense := &entity.Expense{
		UserID:           input.UserID,
		CategoryID:       category.ID,
		Date:             date,
		Amount:           input.Amount,
		PaymentMethod:    input.PaymentMethod,
		Description:      input.Description,
		VendorName:       input.VendorName,
		ReceiptImagePath: input.ReceiptImagePath,
		Category:         category,
	}
	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesInput filters an expense listing. Dates are inclusive local YYYY-MM-DD values.
type ListExpensesInput struct {
	UserID     uuid.UUID
	Pagination pagination.Params
	StartDate  string
	EndDate    string
	CategoryID *uuid.UUID
}

// ListExpenses lists the owner's expenses, newest first
func (s *ExpenseService) ListExpenses(ctx context.Context, input *ListExpensesInput) (*pagination.PaginatedResult[entity.Expense], error) {
	start, end, err := localDateRange(s.clock, input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	params := &repository.ExpenseFilterParams{
		Pagination: input.Pagination,
		Start:      start,
		End:        end,
		CategoryID: input.CategoryID,
	}
	expenses, total, err := s.expenses.List(ctx, input.UserID, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(expenses, params.Pagination, total), nil
}

// ExpenseSummary holds the expense totals shown on the expenses page
type ExpenseSummary struct {
	TodayTotal    decimal.Decimal            `json:"today_total"`
	MonthTotal    decimal.Decimal            `json:"month_total"`
	FilteredTotal decimal.Decimal            `json:"filtered_total"`
	TopCategories []repository.CategoryTotal `json:"top_categories"`
}

// GetSummary totals today's, this month's and the filtered expenses, and
// lists the biggest categories of the month
func (s *ExpenseService) GetSummary(ctx context.Context, ownerID uuid.UUID, startDate, endDate string) (*ExpenseSummary, error) {
	start, end, err := localDateRange(s.clock, startDate, endDate)
	if err != nil {
		return nil, err
	}

	now := s.clock.NowLocal()
	todayStart := s.clock.ToAbsolute(s.clock.StartOfDay(now))
	todayEnd := s.clock.ToAbsolute(s.clock.NextDay(now))
	monthStartLocal := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.clock.Location())
	monthStart := s.clock.ToAbsolute(monthStartLocal)
	monthEnd := s.clock.ToAbsolute(monthStartLocal.AddDate(0, 1, 0))

	summary := &ExpenseSummary{}
	if summary.FilteredTotal, err = s.expenses.Sum(ctx, ownerID, repository.ExpenseSumFilter{Start: start, End: end}); err != nil {
		return nil, err
	}
	if summary.TodayTotal, err = s.expenses.Sum(ctx, ownerID, repository.ExpenseSumFilter{Start: &todayStart, End: &todayEnd}); err != nil {
		return nil, err
	}
	if summary.MonthTotal, err = s.expenses.Sum(ctx, ownerID, repository.ExpenseSumFilter{Start: &monthStart, End: &monthEnd}); err != nil {
		return nil, err
	}
	if summary.TopCategories, err = s.expenses.TopCategories(ctx, ownerID, monthStart, monthEnd, topExpenseCategories); err != nil {
		return nil, err
	}
	if summary.TopCategories == nil {
		summary.TopCategories = []repository.CategoryTotal{}
	}
	return summary, nil
}

// DeleteExpense permanently removes one of the owner's expenses
func (s *ExpenseService) DeleteExpense(ctx context.Context, ownerID, id uuid.UUID) error {
	expense, err := s.expenses.GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if expense == nil {
		return apperror.NewNotFoundError("Expense")
	}
	return s.expenses.Delete(ctx, ownerID, id)
}
