package service

import (
	"fmt"
	"time"

	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/enum"
)

// ScheduleEvaluator decides whether a schedule is due on a polling tick
type ScheduleEvaluator struct {
	debounce time.Duration
}

// NewScheduleEvaluator creates an evaluator that suppresses a schedule for
// debounce after its last run
func NewScheduleEvaluator(debounce time.Duration) *ScheduleEvaluator {
	return &ScheduleEvaluator{debounce: debounce}
}

// ShouldFire reports whether s is due at nowLocal. Only the hour and minute
// of nowLocal are compared against the scheduled time.
func (e *ScheduleEvaluator) ShouldFire(s *entity.ReportSchedule, nowLocal time.Time) (bool, error) {
	if !s.ScheduledTime.Matches(nowLocal) {
		return false, nil
	}
	if s.LastRun != nil && nowLocal.Sub(*s.LastRun) < e.debounce {
		return false, nil
	}

	switch s.Cadence {
	case enum.CadenceDaily:
		return true, nil
	case enum.CadenceWeekly:
		// no configured day never matches
		return s.DayOfWeek != nil && nowLocal.Weekday() == *s.DayOfWeek, nil
	case enum.CadenceMonthly:
		day := 1
		if s.DayOfMonth != nil {
			day = *s.DayOfMonth
		}
		return nowLocal.Day() == day, nil
	}
	return false, fmt.Errorf("schedule %s has unknown cadence %d", s.ID, int(s.Cadence))
}
