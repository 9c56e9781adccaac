package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ReportCategory selects which records a report covers
type ReportCategory int

const (
	ReportCategorySales    ReportCategory = 1
	ReportCategoryExpenses ReportCategory = 2
	ReportCategoryAll      ReportCategory = 3
)

// ScheduledCategories are the categories that get a persisted schedule
var ScheduledCategories = []ReportCategory{ReportCategorySales, ReportCategoryExpenses}

func (r ReportCategory) String() string {
	switch r {
	case ReportCategorySales:
		return "Sales"
	case ReportCategoryExpenses:
		return "Expenses"
	case ReportCategoryAll:
		return "All"
	}
	return fmt.Sprintf("ReportCategory(%d)", int(r))
}

// IsValid reports whether r is one of the known categories
func (r ReportCategory) IsValid() bool {
	switch r {
	case ReportCategorySales, ReportCategoryExpenses, ReportCategoryAll:
		return true
	}
	return false
}

// IncludesSales reports whether bills belong in the report
func (r ReportCategory) IncludesSales() bool {
	return r == ReportCategorySales || r == ReportCategoryAll
}

// IncludesExpenses reports whether expenses belong in the report
func (r ReportCategory) IncludesExpenses() bool {
	return r == ReportCategoryExpenses || r == ReportCategoryAll
}

// ParseReportCategory parses a category name, ignoring case
func ParseReportCategory(s string) (ReportCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sales":
		return ReportCategorySales, nil
	case "expenses":
		return ReportCategoryExpenses, nil
	case "all":
		return ReportCategoryAll, nil
	}
	return 0, fmt.Errorf("unknown report category %q", s)
}

func (r ReportCategory) MarshalJSON() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("unknown report category %d", int(r))
	}
	return json.Marshal(r.String())
}

func (r *ReportCategory) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if !ReportCategory(i).IsValid() {
			return fmt.Errorf("unknown report category %d", i)
		}
		*r = ReportCategory(i)
		return nil
	}
	parsed, err := ParseReportCategory(str)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r ReportCategory) Value() (driver.Value, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("unknown report category %d", int(r))
	}
	return int64(r), nil
}

func (r *ReportCategory) Scan(value interface{}) error {
	var i int64
	switch v := value.(type) {
	case int64:
		i = v
	case int32:
		i = int64(v)
	case int:
		i = int64(v)
	default:
		return fmt.Errorf("cannot scan %T into ReportCategory", value)
	}
	if !ReportCategory(i).IsValid() {
		return fmt.Errorf("unknown report category %d", i)
	}
	*r = ReportCategory(i)
	return nil
}

// ParseReportType splits a "<Cadence>[_<Category>]" tag. The category defaults to All.
func ParseReportType(reportType string) (Cadence, ReportCategory, error) {
	parts := strings.SplitN(reportType, "_", 2)
	cadence, err := ParseCadence(parts[0])
	if err != nil {
		return 0, 0, err
	}
	category := ReportCategoryAll
	if len(parts) == 2 {
		category, err = ParseReportCategory(parts[1])
		if err != nil {
			return 0, 0, err
		}
	}
	return cadence, category, nil
}
