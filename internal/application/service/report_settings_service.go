package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/enum"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sangkips/restopos-api/pkg/apperror"
	"github.com/sangkips/restopos-api/pkg/clock"
	"github.com/shopspring/decimal"
)

// ReportSettingsService manages report schedules, recipients and the
// restaurant-wide general settings
type ReportSettingsService struct {
	schedules         repository.ReportScheduleRepository
	settings          repository.GlobalSettingRepository
	dispatcher        Dispatcher
	clock             *clock.Clock
	validate          *validator.Validate
	fallbackRecipient string
}

// NewReportSettingsService creates a new report settings service
func NewReportSettingsService(
	schedules repository.ReportScheduleRepository,
	settings repository.GlobalSettingRepository,
	dispatcher Dispatcher,
	clk *clock.Clock,
	fallbackRecipient string,
) *ReportSettingsService {
	return &ReportSettingsService{
		schedules:         schedules,
		settings:          settings,
		dispatcher:        dispatcher,
		clock:             clk,
		validate:          validator.New(),
		fallbackRecipient: fallbackRecipient,
	}
}

// ListSchedules returns every report schedule
func (s *ReportSettingsService) ListSchedules(ctx context.Context) ([]entity.ReportSchedule, error) {
	return s.schedules.List(ctx)
}

// UpdateScheduleInput represents the update schedule input
type UpdateScheduleInput struct {
	IsActive      bool
	ScheduledTime string
	DayOfWeek     *int
	DayOfMonth    *int
}

// UpdateSchedule edits a schedule and clears its last run so the new
// settings can fire on their next matching minute
func (s *ReportSettingsService) UpdateSchedule(ctx context.Context, id uuid.UUID, input *UpdateScheduleInput) (*entity.ReportSchedule, error) {
	at, err := entity.ParseTimeOfDay(strings.TrimSpace(input.ScheduledTime))
	if err != nil {
		return nil, apperror.NewBadRequestError("Invalid time format. Use HH:mm")
	}
	if input.DayOfWeek != nil && (*input.DayOfWeek < 0 || *input.DayOfWeek > 6) {
		return nil, apperror.NewBadRequestError("Day of week must be between 0 (Sunday) and 6 (Saturday)")
	}
	if input.DayOfMonth != nil && (*input.DayOfMonth < 1 || *input.DayOfMonth > 31) {
		return nil, apperror.NewBadRequestError("Day of month must be between 1 and 31")
	}

	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, apperror.NewNotFoundError("Schedule")
	}

	schedule.IsActive = input.IsActive
	schedule.ScheduledTime = at
	schedule.DayOfWeek = nil
	if input.DayOfWeek != nil {
		day := time.Weekday(*input.DayOfWeek)
		schedule.DayOfWeek = &day
	}
	schedule.DayOfMonth = input.DayOfMonth
	schedule.LastRun = nil

	if err := s.schedules.Update(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

// GetReportEmails returns the raw recipient list
func (s *ReportSettingsService) GetReportEmails(ctx context.Context) (string, error) {
	value, _, err := s.settings.Get(ctx, entity.SettingReportEmails)
	return value, err
}

// UpdateReportEmails stores a comma separated recipient list after checking
// every address
func (s *ReportSettingsService) UpdateReportEmails(ctx context.Context, emails string) error {
	var fieldErrors []apperror.FieldError
	for _, addr := range ParseRecipients(emails) {
		if err := s.validate.Var(addr, "email"); err != nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   "emails",
				Message: fmt.Sprintf("%q is not a valid email address", addr),
			})
		}
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return s.settings.Upsert(ctx, entity.SettingReportEmails, strings.Join(ParseRecipients(emails), ","))
}

// RunNow dispatches a report immediately for the window ending tonight.
// reportType is "<Cadence>[_<Category>]"; the category defaults to All.
func (s *ReportSettingsService) RunNow(ctx context.Context, reportType string) (*DispatchResult, error) {
	cadence, category, err := enum.ParseReportType(reportType)
	if err != nil {
		return nil, apperror.NewBadRequestError("Invalid report type")
	}

	window, err := WindowFor(cadence, s.clock.NowLocal())
	if err != nil {
		return nil, apperror.NewBadRequestError("Invalid report type")
	}

	recipients, found, err := s.settings.Get(ctx, entity.SettingReportEmails)
	if err != nil {
		return nil, err
	}
	if !found || strings.TrimSpace(recipients) == "" {
		recipients = s.fallbackRecipient
	}

	result, err := s.dispatcher.Dispatch(ctx, DispatchRequest{
		Cadence:    cadence,
		Category:   category,
		Window:     window,
		Recipients: recipients,
	})
	if err != nil {
		return nil, apperror.NewInternalError("Failed to generate/send report", err)
	}
	return result, nil
}

// GeneralSettings are the billing and receipt settings
type GeneralSettings struct {
	GSTEnabled              bool            `json:"gst_enabled"`
	GSTPercentage           decimal.Decimal `json:"gst_percentage"`
	ServiceChargeEnabled    bool            `json:"service_charge_enabled"`
	ServiceChargePercentage decimal.Decimal `json:"service_charge_percentage"`
	RestaurantName          string          `json:"restaurant_name"`
	RestaurantAddress       string          `json:"restaurant_address"`
	RestaurantPhone         string          `json:"restaurant_phone"`
}

var generalSettingKeys = []string{
	entity.SettingGSTEnabled,
	entity.SettingGSTPercentage,
	entity.SettingServiceChargeEnabled,
	entity.SettingServiceChargePercentage,
	entity.SettingRestaurantName,
	entity.SettingRestaurantAddress,
	entity.SettingRestaurantPhone,
}

// GetGeneralSettings reads the general settings, using defaults for missing
// or unparseable values
func (s *ReportSettingsService) GetGeneralSettings(ctx context.Context) (*GeneralSettings, error) {
	values, err := s.settings.GetMany(ctx, generalSettingKeys)
	if err != nil {
		return nil, err
	}
	get := func(key string) string {
		if v, ok := values[key]; ok {
			return v
		}
		return entity.DefaultGeneralSettings[key]
	}

	return &GeneralSettings{
		GSTEnabled:              parseBoolSetting(get(entity.SettingGSTEnabled), entity.DefaultGeneralSettings[entity.SettingGSTEnabled]),
		GSTPercentage:           parseDecimalSetting(get(entity.SettingGSTPercentage), entity.DefaultGeneralSettings[entity.SettingGSTPercentage]),
		ServiceChargeEnabled:    parseBoolSetting(get(entity.SettingServiceChargeEnabled), entity.DefaultGeneralSettings[entity.SettingServiceChargeEnabled]),
		ServiceChargePercentage: parseDecimalSetting(get(entity.SettingServiceChargePercentage), entity.DefaultGeneralSettings[entity.SettingServiceChargePercentage]),
		RestaurantName:          get(entity.SettingRestaurantName),
		RestaurantAddress:       get(entity.SettingRestaurantAddress),
		RestaurantPhone:         get(entity.SettingRestaurantPhone),
	}, nil
}

// UpdateGeneralSettings overwrites every general setting
func (s *ReportSettingsService) UpdateGeneralSettings(ctx context.Context, input *GeneralSettings) error {
	if input.GSTPercentage.IsNegative() || input.ServiceChargePercentage.IsNegative() {
		return apperror.NewBadRequestError("Percentages cannot be negative")
	}
	return s.settings.UpsertMany(ctx, map[string]string{
		entity.SettingGSTEnabled:              strconv.FormatBool(input.GSTEnabled),
		entity.SettingGSTPercentage:           input.GSTPercentage.String(),
		entity.SettingServiceChargeEnabled:    strconv.FormatBool(input.ServiceChargeEnabled),
		entity.SettingServiceChargePercentage: input.ServiceChargePercentage.String(),
		entity.SettingRestaurantName:          input.RestaurantName,
		entity.SettingRestaurantAddress:       input.RestaurantAddress,
		entity.SettingRestaurantPhone:         input.RestaurantPhone,
	})
}

func parseBoolSetting(value, fallback string) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
		return b
	}
	b, _ := strconv.ParseBool(fallback)
	return b
}

func parseDecimalSetting(value, fallback string) decimal.Decimal {
	if d, err := decimal.NewFromString(strings.TrimSpace(value)); err == nil {
		return d
	}
	return decimal.RequireFromString(fallback)
}
