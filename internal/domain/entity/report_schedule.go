package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// TimeOfDay is a local wall-clock time with minute resolution
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay accepts "HH:mm" or "HH:mm:ss". Seconds are discarded.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Matches reports whether at has the same hour and minute
func (t TimeOfDay) Matches(at time.Time) bool {
	return at.Hour() == t.Hour && at.Minute() == t.Minute
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *TimeOfDay) Scan(value interface{}) error {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", value)
	}
	parsed, err := ParseTimeOfDay(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ReportSchedule is one recurring email report. There is exactly one row per
// (cadence, category) pair; rows are seeded at startup.
type ReportSchedule struct {
	ID            uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	Cadence       enum.Cadence        `gorm:"not null;uniqueIndex:idx_report_schedules_kind,priority:1" json:"cadence"`
	Category      enum.ReportCategory `gorm:"not null;uniqueIndex:idx_report_schedules_kind,priority:2" json:"category"`
	IsActive      bool                `gorm:"default:false" json:"is_active"`
	ScheduledTime TimeOfDay           `gorm:"type:varchar(5);not null" json:"scheduled_time"`
	DayOfWeek     *time.Weekday       `json:"day_of_week,omitempty"`
	DayOfMonth    *int                `json:"day_of_month,omitempty"`
	LastRun       *time.Time          `gorm:"type:timestamptz" json:"last_run,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new schedule
func (s *ReportSchedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReportSchedule model
func (ReportSchedule) TableName() string {
	return "report_schedules"
}

// ReportType returns the "<Cadence>_<Category>" tag used by manual runs
func (s *ReportSchedule) ReportType() string {
	return s.Cadence.String() + "_" + s.Category.String()
}

// MarshalJSON adds the report_type tag next to the stored columns
func (s ReportSchedule) MarshalJSON() ([]byte, error) {
	type schedule ReportSchedule
	return json.Marshal(struct {
		schedule
		ReportType string `json:"report_type"`
	}{schedule(s), s.ReportType()})
}
