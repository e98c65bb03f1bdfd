package model

import (
	"fmt"
	"time"
)

// Month identifies a calendar month. Its canonical encoding is "YYYY-MM",
// zero-padded so that lexicographic order matches chronological order. The
// same property holds for "YYYY-MM-DD" transaction dates, which is what
// makes string range queries against the store correct.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a "YYYY-MM" month key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the month containing a "YYYY-MM-DD" date.
func MonthOf(date string) (Month, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return Month{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Prev returns the preceding calendar month, wrapping January to December
// of the previous year.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// FirstDay returns the first day of the month as a "YYYY-MM-DD" date.
func (m Month) FirstDay() string {
	return fmt.Sprintf("%04d-%02d-01", m.Year, int(m.Month))
}

// LastDay returns the last day of the month as a "YYYY-MM-DD" date.
func (m Month) LastDay() string {
	last := time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC)
	return last.Format("2006-01-02")
}

// ValidDate reports whether s is a well-formed zero-padded "YYYY-MM-DD" date.
func ValidDate(s string) bool {
	t, err := time.Parse("2006-01-02", s)
	return err == nil && t.Format("2006-01-02") == s
}
