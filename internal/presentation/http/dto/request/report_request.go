package request

import "github.com/shopspring/decimal"

// UpdateScheduleRequest edits a report schedule
type UpdateScheduleRequest struct {
	IsActive      bool   `json:"is_active"`
	ScheduledTime string `json:"scheduled_time" binding:"hhmm"`
	DayOfWeek     *int   `json:"day_of_week"`
	DayOfMonth    *int   `json:"day_of_month"`
}

// ReportEmailsRequest replaces the report recipient list
type ReportEmailsRequest struct {
	Emails string `json:"emails"`
}

// GeneralSettingsRequest overwrites the billing and receipt settings
type GeneralSettingsRequest struct {
	GSTEnabled              bool            `json:"gst_enabled"`
	GSTPercentage           decimal.Decimal `json:"gst_percentage" binding:"decimal_gte0"`
	ServiceChargeEnabled    bool            `json:"service_charge_enabled"`
	ServiceChargePercentage decimal.Decimal `json:"service_charge_percentage" binding:"decimal_gte0"`
	RestaurantName          string          `json:"restaurant_name" binding:"max=255"`
	RestaurantAddress       string          `json:"restaurant_address" binding:"max=500"`
	RestaurantPhone         string          `json:"restaurant_phone" binding:"max=50"`
}
