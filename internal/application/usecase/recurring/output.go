// Package recurring contains recurring template use cases, including the occurrence
// generator that materializes a template into a period exactly once.
package recurring

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/period-engine/internal/domain/entity"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// TemplateOutput represents a recurring template in use case results.
type TemplateOutput struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Amount      decimal.Decimal
	Type        entity.TransactionType
	Description string
	CategoryID  *uuid.UUID
	WalletID    uuid.UUID
	Frequency   entity.RecurrenceFrequency
	DayOfMonth  int
	StartDate   time.Time
	EndDate     *time.Time
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func toTemplateOutput(template *entity.RecurringTemplate) *TemplateOutput {
	return &TemplateOutput{
		ID:          template.ID,
		OwnerID:     template.OwnerID,
		Amount:      template.Amount,
		Type:        template.Type,
		Description: template.Description,
		CategoryID:  template.CategoryID,
		WalletID:    template.WalletID,
		Frequency:   template.Cadence.Frequency,
		DayOfMonth:  template.Cadence.DayOfMonth,
		StartDate:   template.StartDate,
		EndDate:     template.EndDate,
		Active:      template.Active,
		CreatedAt:   template.CreatedAt,
		UpdatedAt:   template.UpdatedAt,
	}
}

// OccurrenceOutput represents the recorded outcome of one template period.
type OccurrenceOutput struct {
	ID            uuid.UUID
	TemplateID    uuid.UUID
	OwnerID       uuid.UUID
	Period        valueobject.PeriodKey
	ScheduledDate time.Time
	Outcome       entity.OccurrenceOutcome
	TransactionID *uuid.UUID
	ErrorMessage  *string
	Attempts      int
	GeneratedAt   time.Time
}

func toOccurrenceOutput(occurrence *entity.RecurringOccurrence) *OccurrenceOutput {
	return &OccurrenceOutput{
		ID:            occurrence.ID,
		TemplateID:    occurrence.TemplateID,
		OwnerID:       occurrence.OwnerID,
		Period:        occurrence.Period,
		ScheduledDate: occurrence.ScheduledDate,
		Outcome:       occurrence.Outcome,
		TransactionID: occurrence.TransactionID,
		ErrorMessage:  occurrence.ErrorMessage,
		Attempts:      occurrence.Attempts,
		GeneratedAt:   occurrence.GeneratedAt,
	}
}
