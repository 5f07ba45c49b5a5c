// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// RecurrenceFrequency represents how often a recurring template fires.
type RecurrenceFrequency string

const (
	RecurrenceMonthly RecurrenceFrequency = "monthly"
)

// Cadence describes when a recurring template produces its occurrence inside a period.
type Cadence struct {
	Frequency  RecurrenceFrequency
	DayOfMonth int
}

// ScheduledDate returns the cadence date inside the given period, clamping the configured
// day to the period's last day (day 31 in February becomes the 28th or 29th).
func (c Cadence) ScheduledDate(key valueobject.PeriodKey) time.Time {
	return key.DayClamped(c.DayOfMonth)
}

// IsValid reports whether the cadence can be scheduled.
func (c Cadence) IsValid() bool {
	return c.Frequency == RecurrenceMonthly &&
		c.DayOfMonth >= valueobject.MinCycleDay && c.DayOfMonth <= valueobject.MaxCycleDay
}

// RecurringTemplate is a user-defined rule producing one transaction per cadence interval.
type RecurringTemplate struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Amount      decimal.Decimal // Negative for expenses, positive for income
	Type        TransactionType
	Description string
	CategoryID  *uuid.UUID
	WalletID    uuid.UUID
	Cadence     Cadence
	StartDate   time.Time
	EndDate     *time.Time
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewRecurringTemplate creates a new active RecurringTemplate.
func NewRecurringTemplate(
	ownerID uuid.UUID,
	amount decimal.Decimal,
	transactionType TransactionType,
	description string,
	categoryID *uuid.UUID,
	walletID uuid.UUID,
	cadence Cadence,
	startDate time.Time,
	endDate *time.Time,
) *RecurringTemplate {
	now := time.Now().UTC()

	return &RecurringTemplate{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Amount:      amount,
		Type:        transactionType,
		Description: description,
		CategoryID:  categoryID,
		WalletID:    walletID,
		Cadence:     cadence,
		StartDate:   startDate,
		EndDate:     endDate,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// FirstPeriod returns the first period the template can produce an occurrence in.
func (t *RecurringTemplate) FirstPeriod() valueobject.PeriodKey {
	return valueobject.PeriodKeyOf(t.StartDate)
}

// CoversPeriod reports whether the period lies within the template's start and end dates.
func (t *RecurringTemplate) CoversPeriod(key valueobject.PeriodKey) bool {
	if key.Before(t.FirstPeriod()) {
		return false
	}
	if t.EndDate != nil && valueobject.PeriodKeyOf(*t.EndDate).Before(key) {
		return false
	}
	return true
}

// OccurrenceOutcome represents the result of one generation attempt.
type OccurrenceOutcome string

const (
	OccurrenceGenerated OccurrenceOutcome = "generated"
	OccurrenceFailed    OccurrenceOutcome = "failed"
	OccurrenceCanceled  OccurrenceOutcome = "canceled"
)

// IsTerminal reports whether no further generation attempt may change the occurrence.
func (o OccurrenceOutcome) IsTerminal() bool {
	switch o {
	case OccurrenceGenerated, OccurrenceCanceled:
		return true
	case OccurrenceFailed:
		return false
	default:
		return false
	}
}

// RecurringOccurrence is the audit record of materializing a template into a period.
// At most one exists per (template, period).
type RecurringOccurrence struct {
	ID            uuid.UUID
	TemplateID    uuid.UUID
	OwnerID       uuid.UUID
	Period        valueobject.PeriodKey
	ScheduledDate time.Time
	Outcome       OccurrenceOutcome
	TransactionID *uuid.UUID
	ErrorMessage  *string
	Attempts      int
	GeneratedAt   time.Time
	UpdatedAt     time.Time

	// persisted is true when the record was loaded from storage, so saving it
	// must update the existing row instead of inserting a new one.
	persisted bool
}

// NewRecurringOccurrence starts a fresh occurrence for a template and period.
func NewRecurringOccurrence(template *RecurringTemplate, key valueobject.PeriodKey, now time.Time) *RecurringOccurrence {
	return &RecurringOccurrence{
		ID:            uuid.New(),
		TemplateID:    template.ID,
		OwnerID:       template.OwnerID,
		Period:        key,
		ScheduledDate: template.Cadence.ScheduledDate(key),
		GeneratedAt:   now,
		UpdatedAt:     now,
	}
}

// RestoreRecurringOccurrence marks an occurrence as loaded from storage.
func RestoreRecurringOccurrence(o *RecurringOccurrence) *RecurringOccurrence {
	o.persisted = true
	return o
}

// IsPersisted reports whether the occurrence already exists in storage.
func (o *RecurringOccurrence) IsPersisted() bool {
	return o.persisted
}

// IsRetry reports whether this attempt retries an earlier failed attempt.
func (o *RecurringOccurrence) IsRetry() bool {
	return o.persisted && o.Outcome == OccurrenceFailed
}

// MarkGenerated records a successful materialization.
func (o *RecurringOccurrence) MarkGenerated(transactionID uuid.UUID, now time.Time) {
	o.Outcome = OccurrenceGenerated
	o.TransactionID = &transactionID
	o.ErrorMessage = nil
	o.touch(now)
}

// MarkFailed records a failed attempt with its error text.
func (o *RecurringOccurrence) MarkFailed(err error, now time.Time) {
	message := err.Error()
	o.Outcome = OccurrenceFailed
	o.TransactionID = nil
	o.ErrorMessage = &message
	o.touch(now)
}

// MarkCanceled records that the template no longer produces this occurrence.
func (o *RecurringOccurrence) MarkCanceled(reason string, now time.Time) {
	o.Outcome = OccurrenceCanceled
	o.TransactionID = nil
	o.ErrorMessage = &reason
	o.touch(now)
}

func (o *RecurringOccurrence) touch(now time.Time) {
	o.Attempts++
	o.GeneratedAt = now
	o.UpdatedAt = now
}
