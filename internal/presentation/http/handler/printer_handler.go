package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/restopos-api/internal/application/service"
	"github.com/sangkips/restopos-api/internal/presentation/http/dto/response"
)

// PrinterHandler handles thermal printer requests
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// Status reports whether a printer is configured and reachable
func (h *PrinterHandler) Status(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.printerService.GetStatus(c.Request.Context()))
}

// TestPrint prints a sample receipt
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	receipt, err := h.printerService.TestPrint(c.Request.Context())
	if err != nil {
		if receipt == nil {
			response.Error(c, err)
			return
		}
		c.JSON(http.StatusServiceUnavailable, response.APIResponse{
			Success: false,
			Message: err.Error(),
			Data:    receipt,
		})
		return
	}

	response.OK(c, "Test receipt printed", receipt)
}
