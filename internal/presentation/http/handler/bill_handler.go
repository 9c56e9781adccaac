package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/restopos-api/internal/application/service"
	"github.com/sangkips/restopos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/restopos-api/internal/presentation/http/dto/response"
)

// BillHandler handles bill HTTP requests
type BillHandler struct {
	billService    *service.BillService
	printerService *service.PrinterService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billService *service.BillService, printerService *service.PrinterService) *BillHandler {
	return &BillHandler{billService: billService, printerService: printerService}
}

// Create handles bill submission. The bill number and token are assigned here.
// @Summary Create Bill
// @Tags bills
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Deduplicates retried submissions"
// @Param request body request.CreateBillRequest true "Bill"
// @Success 201 {object} response.APIResponse
// @Router /bills [post]
func (h *BillHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	items := make([]service.BillItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.BillItemInput{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Total:     item.Total,
		})
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), &service.CreateBillInput{
		UserID:        userID,
		Subtotal:      req.Subtotal,
		GST:           req.GST,
		ServiceCharge: req.ServiceCharge,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		Platform:      req.Platform,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Date:          req.Date,
		Items:         items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Bill created successfully", bill)
}

// List handles listing bills, newest first
func (h *BillHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var filter request.DateRangeRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.billService.ListBills(c.Request.Context(), &service.ListBillsInput{
		UserID:     userID,
		Pagination: pageParams(c),
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Bills retrieved successfully", result)
}

// Get handles fetching one bill with its items
func (h *BillHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "bill")
	if !ok {
		return
	}

	bill, err := h.billService.GetBill(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", bill)
}

// Print sends the bill receipt to the thermal printer. When the printer
// fails the formatted receipt is still returned.
func (h *BillHandler) Print(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "bill")
	if !ok {
		return
	}

	receipt, err := h.printerService.PrintBillReceipt(c.Request.Context(), userID, id)
	if err != nil {
		if receipt == nil {
			response.Error(c, err)
			return
		}
		c.JSON(http.StatusServiceUnavailable, response.APIResponse{
			Success: false,
			Message: "Printer unavailable",
			Data:    receipt,
		})
		return
	}

	response.OK(c, "Receipt printed", receipt)
}
