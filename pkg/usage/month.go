package usage

import (
	"fmt"
	"time"
)

const monthLayout = "2006-01"

// Month is a UTC calendar month key such as "2024-03".
type Month string

// MonthOf returns the UTC month containing t.
func MonthOf(t time.Time) Month {
	return Month(t.UTC().Format(monthLayout))
}

// ParseMonth validates a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	if _, err := time.Parse(monthLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month(s), nil
}

// Start returns the first instant of the month in UTC.
func (m Month) Start() time.Time {
	t, err := time.Parse(monthLayout, string(m))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Next returns the following month.
func (m Month) Next() Month {
	return MonthOf(m.Start().AddDate(0, 1, 0))
}

func (m Month) String() string { return string(m) }
