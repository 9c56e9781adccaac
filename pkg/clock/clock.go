// Package clock converts between the restaurant's fixed local time zone and
// absolute instants. All business dates are computed in local wall-clock
// time; only the storage boundary works with absolute instants.
package clock

import (
	"fmt"
	"time"
)

// DefaultZone is used when no zone is configured
const DefaultZone = "Asia/Kolkata"

// Clock reports the current time in a fixed location
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New resolves the named zone once. An unknown zone is a startup error.
func New(zoneName string) (*Clock, error) {
	if zoneName == "" {
		zoneName = DefaultZone
	}
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", zoneName, err)
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// NewFixed returns a clock that always reports the given instant
func NewFixed(loc *time.Location, at time.Time) *Clock {
	return &Clock{loc: loc, now: func() time.Time { return at }}
}

// Location returns the local zone
func (c *Clock) Location() *time.Location {
	return c.loc
}

// NowLocal returns the current wall-clock time in the local zone
func (c *Clock) NowLocal() time.Time {
	return c.now().In(c.loc)
}

// ToLocal converts an absolute instant to local wall-clock form.
// A zero-offset (UTC) value is treated as an absolute instant.
func (c *Clock) ToLocal(t time.Time) time.Time {
	return t.In(c.loc)
}

// ToAbsolute re-interprets the wall clock of local in the local zone and
// returns the matching UTC instant.
func (c *Clock) ToAbsolute(local time.Time) time.Time {
	wall := time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), c.loc)
	return wall.UTC()
}

// StartOfDay returns local midnight of the day containing t
func (c *Clock) StartOfDay(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// NextDay returns local midnight of the day after the one containing t
func (c *Clock) NextDay(t time.Time) time.Time {
	start := c.StartOfDay(t)
	return time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, c.loc)
}

// ParseLocalDate parses a YYYY-MM-DD value as local midnight
func (c *Clock) ParseLocalDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, c.loc)
}
