package database

import (
	"testing"
	"time"

	"github.com/sangkips/restopos-api/internal/domain/enum"
)

func TestDefaultSchedules(t *testing.T) {
	schedules := DefaultSchedules()
	if len(schedules) != 6 {
		t.Fatalf("expected 6 schedules, got %d", len(schedules))
	}

	seen := map[string]bool{}
	for _, s := range schedules {
		key := s.ReportType()
		if seen[key] {
			t.Fatalf("duplicate schedule %s", key)
		}
		seen[key] = true

		if s.ScheduledTime.String() != "22:00" {
			t.Errorf("%s: expected 22:00, got %s", key, s.ScheduledTime)
		}
		if s.IsActive != (s.Cadence == enum.CadenceDaily) {
			t.Errorf("%s: unexpected active flag %v", key, s.IsActive)
		}
		switch s.Cadence {
		case enum.CadenceWeekly:
			if s.DayOfWeek == nil || *s.DayOfWeek != time.Sunday {
				t.Errorf("%s: expected Sunday", key)
			}
		case enum.CadenceMonthly:
			if s.DayOfMonth == nil || *s.DayOfMonth != 1 {
				t.Errorf("%s: expected day 1", key)
			}
		case enum.CadenceDaily:
			if s.DayOfWeek != nil || s.DayOfMonth != nil {
				t.Errorf("%s: daily must not carry day fields", key)
			}
		}
		if s.LastRun != nil {
			t.Errorf("%s: seeded schedule must not have run", key)
		}
	}
	if !seen["Weekly_Expenses"] || !seen["Monthly_Sales"] {
		t.Fatalf("missing combinations: %v", seen)
	}
}
