package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/restopos-api/internal/application/service"
	"github.com/sangkips/restopos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/restopos-api/internal/presentation/http/dto/response"
)

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats handles the dashboard for a date range (today by default)
// @Summary Dashboard Stats
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {object} response.APIResponse
// @Router /dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var q request.DateRangeRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	h.respond(c, &service.DashboardQuery{UserID: userID, StartDate: q.StartDate, EndDate: q.EndDate})
}

// GetToday handles the dashboard for the current local day
func (h *DashboardHandler) GetToday(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	h.respond(c, &service.DashboardQuery{UserID: userID})
}

func (h *DashboardHandler) respond(c *gin.Context, q *service.DashboardQuery) {
	// the service applies the dashboard page size when none is given
	_ = c.ShouldBindQuery(&q.Pagination)

	result, err := h.dashboardService.GetDashboardStats(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard stats retrieved successfully", result)
}
