// Package valueobject contains domain value objects for the Finance Tracker system.
package valueobject

import "time"

const (
	// MinCycleDay is the smallest configurable closing or due day.
	MinCycleDay = 1
	// MaxCycleDay is the largest configurable closing or due day.
	MaxCycleDay = 31
)

// BillingCycleConfig holds the statement configuration of a credit-style instrument.
type BillingCycleConfig struct {
	ClosingDay int
	DueDay     int
}

// IsValid reports whether both days are within 1..31.
func (c BillingCycleConfig) IsValid() bool {
	return IsCycleDay(c.ClosingDay) && IsCycleDay(c.DueDay)
}

// WindowFor computes the billing window containing the reference date.
func (c BillingCycleConfig) WindowFor(referenceDate time.Time) BillingWindow {
	return ComputeBillingWindow(c.ClosingDay, c.DueDay, referenceDate)
}

// BillingWindow describes one statement cycle. All dates are UTC midnight.
type BillingWindow struct {
	OpensOn  time.Time
	ClosesOn time.Time
	DueOn    time.Time
}

// ComputeBillingWindow returns the statement cycle the reference date belongs to.
//
// A reference date after the (clamped) closing day belongs to the next cycle. Closing and
// due days beyond the month's length clamp to its last day. The due date falls in the
// cycle month when dueDay > closingDay and in the following month otherwise.
func ComputeBillingWindow(closingDay, dueDay int, referenceDate time.Time) BillingWindow {
	reference := PeriodKeyOf(referenceDate)

	cycle := reference
	if referenceDate.Day() > reference.DayClamped(closingDay).Day() {
		cycle = reference.Next()
	}

	closesOn := cycle.DayClamped(closingDay)
	opensOn := cycle.Prev().DayClamped(closingDay).AddDate(0, 0, 1)

	dueMonth := cycle
	if dueDay <= closingDay {
		dueMonth = cycle.Next()
	}

	return BillingWindow{
		OpensOn:  opensOn,
		ClosesOn: closesOn,
		DueOn:    dueMonth.DayClamped(dueDay),
	}
}

// CycleKey returns the period the cycle closes in.
func (w BillingWindow) CycleKey() PeriodKey {
	return PeriodKeyOf(w.ClosesOn)
}

// Contains reports whether the calendar date lies within [OpensOn, ClosesOn].
func (w BillingWindow) Contains(date time.Time) bool {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(w.OpensOn) && !day.After(w.ClosesOn)
}

// IsCycleDay reports whether day is a configurable closing or due day.
func IsCycleDay(day int) bool {
	return day >= MinCycleDay && day <= MaxCycleDay
}
