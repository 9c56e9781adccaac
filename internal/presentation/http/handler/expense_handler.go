package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/application/service"
	"github.com/sangkips/restopos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/restopos-api/internal/presentation/http/dto/response"
)

// ExpenseHandler handles expense HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// ListCategories handles listing active expense categories
func (h *ExpenseHandler) ListCategories(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	categories, err := h.expenseService.ListCategories(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Expense categories retrieved successfully", categories)
}

// CreateCategory handles creating an expense category
func (h *ExpenseHandler) CreateCategory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.expenseService.CreateCategory(c.Request.Context(), &service.CreateCategoryInput{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Expense category created successfully", category)
}

// Create handles recording an expense
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), &service.CreateExpenseInput{
		UserID:           userID,
		CategoryID:       req.CategoryID,
		Date:             req.Date,
		Amount:           req.Amount,
		PaymentMethod:    req.PaymentMethod,
		Description:      req.Description,
		VendorName:       req.VendorName,
		ReceiptImagePath: req.ReceiptImagePath,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Expense recorded successfully", expense)
}

// List handles listing expenses, newest first
func (h *ExpenseHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var filter request.ExpenseFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	input := &service.ListExpensesInput{
		UserID:     userID,
		Pagination: pageParams(c),
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
	}
	if filter.CategoryID != "" {
		categoryID, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			response.BadRequest(c, "Invalid category ID")
			return
		}
		input.CategoryID = &categoryID
	}

	result, err := h.expenseService.ListExpenses(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Expenses retrieved successfully", result)
}

// Summary handles the expense totals panel
func (h *ExpenseHandler) Summary(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var filter request.DateRangeRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	summary, err := h.expenseService.GetSummary(c.Request.Context(), userID, filter.StartDate, filter.EndDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Expense summary retrieved successfully", summary)
}

// Delete handles removing an expense
func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "expense")
	if !ok {
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Expense deleted successfully", nil)
}
