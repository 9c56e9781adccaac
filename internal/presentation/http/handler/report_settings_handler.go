package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/restopos-api/internal/application/service"
	"github.com/sangkips/restopos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/restopos-api/internal/presentation/http/dto/response"
)

// ReportSettingsHandler handles report schedule and general settings requests
type ReportSettingsHandler struct {
	settingsService *service.ReportSettingsService
}

// NewReportSettingsHandler creates a new report settings handler
func NewReportSettingsHandler(settingsService *service.ReportSettingsService) *ReportSettingsHandler {
	return &ReportSettingsHandler{settingsService: settingsService}
}

// ListSchedules handles listing the report schedules
func (h *ReportSettingsHandler) ListSchedules(c *gin.Context) {
	schedules, err := h.settingsService.ListSchedules(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Schedules retrieved successfully", schedules)
}

// UpdateSchedule handles editing a report schedule
// @Summary Update Schedule
// @Tags report-settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param request body request.UpdateScheduleRequest true "Schedule"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /report-settings/schedules/{id} [put]
func (h *ReportSettingsHandler) UpdateSchedule(c *gin.Context) {
	id, ok := paramID(c, "id", "schedule")
	if !ok {
		return
	}

	var req request.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	schedule, err := h.settingsService.UpdateSchedule(c.Request.Context(), id, &service.UpdateScheduleInput{
		IsActive:      req.IsActive,
		ScheduledTime: req.ScheduledTime,
		DayOfWeek:     req.DayOfWeek,
		DayOfMonth:    req.DayOfMonth,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Schedule updated successfully", schedule)
}

// GetEmails handles reading the report recipients
func (h *ReportSettingsHandler) GetEmails(c *gin.Context) {
	emails, err := h.settingsService.GetReportEmails(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Report emails retrieved successfully", gin.H{"emails": emails})
}

// UpdateEmails handles replacing the report recipients
func (h *ReportSettingsHandler) UpdateEmails(c *gin.Context) {
	var req request.ReportEmailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.settingsService.UpdateReportEmails(c.Request.Context(), req.Emails); err != nil {
		response.Error(c, err)
		return
	}

	emails, err := h.settingsService.GetReportEmails(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Report emails updated successfully", gin.H{"emails": emails})
}

// RunNow handles a manual report run, e.g. POST /report-settings/run/Weekly_Sales
func (h *ReportSettingsHandler) RunNow(c *gin.Context) {
	result, err := h.settingsService.RunNow(c.Request.Context(), c.Param("type"))
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Report sent successfully"
	if result.Skipped {
		message = "No data for the period, report skipped"
	}
	response.OK(c, message, result)
}

// GetGeneral handles reading the billing and receipt settings
func (h *ReportSettingsHandler) GetGeneral(c *gin.Context) {
	settings, err := h.settingsService.GetGeneralSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings retrieved successfully", settings)
}

// UpdateGeneral handles overwriting the billing and receipt settings
func (h *ReportSettingsHandler) UpdateGeneral(c *gin.Context) {
	var req request.GeneralSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	settings := &service.GeneralSettings{
		GSTEnabled:              req.GSTEnabled,
		GSTPercentage:           req.GSTPercentage,
		ServiceChargeEnabled:    req.ServiceChargeEnabled,
		ServiceChargePercentage: req.ServiceChargePercentage,
		RestaurantName:          req.RestaurantName,
		RestaurantAddress:       req.RestaurantAddress,
		RestaurantPhone:         req.RestaurantPhone,
	}
	if err := h.settingsService.UpdateGeneralSettings(c.Request.Context(), settings); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings updated successfully", settings)
}
