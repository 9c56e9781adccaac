package service

import (
	"fmt"
	"time"

	"github.com/sangkips/restopos-api/internal/domain/enum"
)

// Window is a half-open local-time interval [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WindowFor returns the to-date window a report of the given cadence covers.
// Every window ends at the midnight after nowLocal.
func WindowFor(cadence enum.Cadence, nowLocal time.Time) (Window, error) {
	loc := nowLocal.Location()
	today := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, loc)
	end := today.AddDate(0, 0, 1)

	switch cadence {
	case enum.CadenceDaily:
		return Window{Start: today, End: end}, nil
	case enum.CadenceWeekly:
		return Window{Start: today.AddDate(0, 0, -int(today.Weekday())), End: end}, nil
	case enum.CadenceMonthly:
		return Window{Start: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc), End: end}, nil
	}
	return Window{}, fmt.Errorf("no report window for cadence %s", cadence)
}
