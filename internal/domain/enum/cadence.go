package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Cadence is the recurrence class of a report schedule
type Cadence int

const (
	CadenceDaily   Cadence = 1
	CadenceWeekly  Cadence = 2
	CadenceMonthly Cadence = 3
)

// Cadences lists every cadence in seeding order
var Cadences = []Cadence{CadenceDaily, CadenceWeekly, CadenceMonthly}

func (c Cadence) String() string {
	switch c {
	case CadenceDaily:
		return "Daily"
	case CadenceWeekly:
		return "Weekly"
	case CadenceMonthly:
		return "Monthly"
	}
	return fmt.Sprintf("Cadence(%d)", int(c))
}

// IsValid reports whether c is one of the known cadences
func (c Cadence) IsValid() bool {
	switch c {
	case CadenceDaily, CadenceWeekly, CadenceMonthly:
		return true
	}
	return false
}

// ParseCadence parses a cadence name, ignoring case
func ParseCadence(s string) (Cadence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return CadenceDaily, nil
	case "weekly":
		return CadenceWeekly, nil
	case "monthly":
		return CadenceMonthly, nil
	}
	return 0, fmt.Errorf("unknown cadence %q", s)
}

func (c Cadence) MarshalJSON() ([]byte, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("unknown cadence %d", int(c))
	}
	return json.Marshal(c.String())
}

func (c *Cadence) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if !Cadence(i).IsValid() {
			return fmt.Errorf("unknown cadence %d", i)
		}
		*c = Cadence(i)
		return nil
	}
	parsed, err := ParseCadence(str)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Cadence) Value() (driver.Value, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("unknown cadence %d", int(c))
	}
	return int64(c), nil
}

func (c *Cadence) Scan(value interface{}) error {
	var i int64
	switch v := value.(type) {
	case int64:
		i = v
	case int32:
		i = int64(v)
	case int:
		i = int64(v)
	default:
		return fmt.Errorf("cannot scan %T into Cadence", value)
	}
	if !Cadence(i).IsValid() {
		return fmt.Errorf("unknown cadence %d", i)
	}
	*c = Cadence(i)
	return nil
}
