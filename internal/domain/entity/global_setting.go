package entity

import "time"

// Well-known setting keys
const (
	SettingReportEmails            = "report_emails"
	SettingGSTEnabled              = "gst_enabled"
	SettingGSTPercentage           = "gst_percentage"
	SettingServiceChargeEnabled    = "service_charge_enabled"
	SettingServiceChargePercentage = "service_charge_percentage"
	SettingRestaurantName          = "restaurant_name"
	SettingRestaurantAddress       = "restaurant_address"
	SettingRestaurantPhone         = "restaurant_phone"
)

// DefaultGeneralSettings are seeded at startup when missing
var DefaultGeneralSettings = map[string]string{
	SettingGSTEnabled:              "true",
	SettingGSTPercentage:           "5",
	SettingServiceChargeEnabled:    "true",
	SettingServiceChargePercentage: "5",
	SettingRestaurantName:          "My Restaurant",
	SettingRestaurantAddress:       "123, Main Street",
	SettingRestaurantPhone:         "+91-00000 00000",
}

// GlobalSetting is a restaurant-wide key/value pair
type GlobalSetting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the GlobalSetting model
func (GlobalSetting) TableName() string {
	return "global_settings"
}
