// Package valueobject contains domain value objects for the Finance Tracker system.
package valueobject

import (
	"fmt"
	"time"
)

const (
	minPeriodYear = 1
	maxPeriodYear = 9999
)

// PeriodKey identifies an accounting month (year + month).
type PeriodKey struct {
	Year  int
	Month time.Month
}

// NewPeriodKey creates a PeriodKey from numeric year and month values.
func NewPeriodKey(year, month int) PeriodKey {
	return PeriodKey{Year: year, Month: time.Month(month)}
}

// PeriodKeyOf returns the period the given date falls in.
func PeriodKeyOf(date time.Time) PeriodKey {
	return PeriodKey{Year: date.Year(), Month: date.Month()}
}

// IsValid reports whether the key denotes a real calendar month.
func (k PeriodKey) IsValid() bool {
	return k.Year >= minPeriodYear && k.Year <= maxPeriodYear &&
		k.Month >= time.January && k.Month <= time.December
}

// Next returns the following period, wrapping December into January.
func (k PeriodKey) Next() PeriodKey {
	return k.AddMonths(1)
}

// Prev returns the preceding period, wrapping January into December.
func (k PeriodKey) Prev() PeriodKey {
	return k.AddMonths(-1)
}

// AddMonths shifts the period by n months (n may be negative).
func (k PeriodKey) AddMonths(n int) PeriodKey {
	total := k.Year*12 + int(k.Month-1) + n
	return PeriodKey{Year: total / 12, Month: time.Month(total%12 + 1)}
}

// Before reports whether k is strictly earlier than other.
func (k PeriodKey) Before(other PeriodKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// FirstDay returns the first calendar day of the period at UTC midnight.
func (k PeriodKey) FirstDay() time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns the last calendar day of the period at UTC midnight.
func (k PeriodKey) LastDay() time.Time {
	return time.Date(k.Year, k.Month+1, 0, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in the period.
func (k PeriodKey) DaysIn() int {
	return k.LastDay().Day()
}

// DayClamped returns the given day of the period, clamped to the period's last day.
// Days below 1 are treated as 1.
func (k PeriodKey) DayClamped(day int) time.Time {
	if day < 1 {
		day = 1
	}
	if last := k.DaysIn(); day > last {
		day = last
	}
	return time.Date(k.Year, k.Month, day, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether date falls within the period.
func (k PeriodKey) Contains(date time.Time) bool {
	return date.Year() == k.Year && date.Month() == k.Month
}

// String formats the key as YYYY-MM.
func (k PeriodKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// ParsePeriodKey parses a YYYY-MM string.
func ParsePeriodKey(value string) (PeriodKey, error) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return PeriodKey{}, fmt.Errorf("invalid period %q: %w", value, err)
	}
	return PeriodKeyOf(t), nil
}
