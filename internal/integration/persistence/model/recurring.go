package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/period-engine/internal/domain/entity"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// RecurringTemplateModel represents the recurring_templates table in the database.
type RecurringTemplateModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Type        string          `gorm:"type:varchar(10);not null"`
	Description string          `gorm:"type:varchar(255);not null"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid"`
	WalletID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Frequency   string          `gorm:"type:varchar(10);not null;default:'monthly'"`
	DayOfMonth  int             `gorm:"not null"`
	StartDate   time.Time       `gorm:"type:date;not null"`
	EndDate     *time.Time      `gorm:"type:date"`
	Active      bool            `gorm:"not null;index"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for the RecurringTemplateModel.
func (RecurringTemplateModel) TableName() string {
	return "recurring_templates"
}

// ToEntity converts a RecurringTemplateModel to a domain RecurringTemplate entity.
func (m *RecurringTemplateModel) ToEntity() *entity.RecurringTemplate {
	return &entity.RecurringTemplate{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Amount:      m.Amount,
		Type:        entity.TransactionType(m.Type),
		Description: m.Description,
		CategoryID:  m.CategoryID,
		WalletID:    m.WalletID,
		Cadence: entity.Cadence{
			Frequency:  entity.RecurrenceFrequency(m.Frequency),
			DayOfMonth: m.DayOfMonth,
		},
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// RecurringTemplateFromEntity creates a RecurringTemplateModel from a domain entity.
func RecurringTemplateFromEntity(template *entity.RecurringTemplate) *RecurringTemplateModel {
	return &RecurringTemplateModel{
		ID:          template.ID,
		OwnerID:     template.OwnerID,
		Amount:      template.Amount,
		Type:        string(template.Type),
		Description: template.Description,
		CategoryID:  template.CategoryID,
		WalletID:    template.WalletID,
		Frequency:   string(template.Cadence.Frequency),
		DayOfMonth:  template.Cadence.DayOfMonth,
		StartDate:   template.StartDate,
		EndDate:     template.EndDate,
		Active:      template.Active,
		CreatedAt:   template.CreatedAt,
		UpdatedAt:   template.UpdatedAt,
	}
}

// RecurringOccurrenceModel represents the recurring_occurrences table in the database.
// The unique index guarantees one occurrence per template and period.
type RecurringOccurrenceModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TemplateID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_occurrence_template_period,priority:1"`
	OwnerID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	PeriodYear    int        `gorm:"not null;uniqueIndex:ux_occurrence_template_period,priority:2"`
	PeriodMonth   int        `gorm:"not null;uniqueIndex:ux_occurrence_template_period,priority:3"`
	ScheduledDate time.Time  `gorm:"type:date;not null"`
	Outcome       string     `gorm:"type:varchar(10);not null;index"`
	TransactionID *uuid.UUID `gorm:"type:uuid"`
	ErrorMessage  *string    `gorm:"type:text"`
	Attempts      int        `gorm:"not null;default:0"`
	GeneratedAt   time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the RecurringOccurrenceModel.
func (RecurringOccurrenceModel) TableName() string {
	return "recurring_occurrences"
}

// ToEntity converts a RecurringOccurrenceModel to a domain RecurringOccurrence entity.
func (m *RecurringOccurrenceModel) ToEntity() *entity.RecurringOccurrence {
	return entity.RestoreRecurringOccurrence(&entity.RecurringOccurrence{
		ID:            m.ID,
		TemplateID:    m.TemplateID,
		OwnerID:       m.OwnerID,
		Period:        valueobject.NewPeriodKey(m.PeriodYear, m.PeriodMonth),
		ScheduledDate: m.ScheduledDate,
		Outcome:       entity.OccurrenceOutcome(m.Outcome),
		TransactionID: m.TransactionID,
		ErrorMessage:  m.ErrorMessage,
		Attempts:      m.Attempts,
		GeneratedAt:   m.GeneratedAt,
		UpdatedAt:     m.UpdatedAt,
	})
}

// RecurringOccurrenceFromEntity creates a RecurringOccurrenceModel from a domain entity.
func RecurringOccurrenceFromEntity(occurrence *entity.RecurringOccurrence) *RecurringOccurrenceModel {
	return &RecurringOccurrenceModel{
		ID:            occurrence.ID,
		TemplateID:    occurrence.TemplateID,
		OwnerID:       occurrence.OwnerID,
		PeriodYear:    occurrence.Period.Year,
		PeriodMonth:   int(occurrence.Period.Month),
		ScheduledDate: occurrence.ScheduledDate,
		Outcome:       string(occurrence.Outcome),
		TransactionID: occurrence.TransactionID,
		ErrorMessage:  occurrence.ErrorMessage,
		Attempts:      occurrence.Attempts,
		GeneratedAt:   occurrence.GeneratedAt,
		UpdatedAt:     occurrence.UpdatedAt,
	}
}
