// Package datetime provides calendar-month arithmetic for simulations.
//
// A Month is an integer count of months since January of year 0, so adding
// months and comparing calendar month/year never touches day-of-month or
// timezone state.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/debt-planner/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
)

// Month is a calendar month index.
type Month int

// Of returns the Month for a calendar year and month.
func Of(year int, month time.Month) Month {
	return Month(year*constants.MonthsPerYear + int(month) - 1)
}

// FromTime returns the calendar month containing t, evaluated in t's location.
func FromTime(t time.Time) Month {
	return Of(t.Year(), t.Month())
}

// Parse accepts "2006-01", "2006-01-02" and RFC 3339 timestamps. Only the
// calendar month and year are kept.
func Parse(value string) (Month, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("date cannot be empty")
	}
	for _, layout := range []string{constants.DateTimeLayout, constants.DayLayout, time.RFC3339} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return FromTime(t), nil
		}
	}
	return 0, fmt.Errorf("unrecognized date %q, expected YYYY-MM or YYYY-MM-DD", value)
}

// MustParse parses a date string and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParse(value string) Month {
	m, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return m
}

// Year returns the calendar year.
func (m Month) Year() int {
	return floorDiv(int(m), constants.MonthsPerYear)
}

// Calendar returns the month of the year.
func (m Month) Calendar() time.Month {
	return time.Month(int(m)-m.Year()*constants.MonthsPerYear) + 1
}

// Add offsets m by n months.
func (m Month) Add(n int) Month {
	return m + Month(n)
}

// Sub returns the number of months from o to m.
func (m Month) Sub(o Month) int {
	return int(m - o)
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	return m < o
}

// Time returns the first day of the month at midnight UTC.
func (m Month) Time() time.Time {
	return time.Date(m.Year(), m.Calendar(), 1, 0, 0, 0, 0, time.UTC)
}

// String formats the month with DateTimeLayout.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year(), int(m.Calendar()))
}

// Label formats the month for display, e.g. "Jan 2025".
func (m Month) Label() string {
	return m.Time().Format("Jan 2006")
}

// MarshalText implements encoding.TextMarshaler.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
