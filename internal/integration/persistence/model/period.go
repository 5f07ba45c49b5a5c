package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/domain/entity"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// PeriodModel represents the periods table in the database.
type PeriodModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_periods_owner_period,priority:1"`
	Year      int        `gorm:"not null;uniqueIndex:ux_periods_owner_period,priority:2"`
	Month     int        `gorm:"not null;uniqueIndex:ux_periods_owner_period,priority:3"`
	Status    string     `gorm:"type:varchar(10);not null;default:'open'"`
	ClosedAt  *time.Time `gorm:"type:timestamp"`
	ClosedBy  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for the PeriodModel.
func (PeriodModel) TableName() string {
	return "periods"
}

// ToEntity converts a PeriodModel to a domain Period entity. A row with an unknown
// status or an out-of-range month is reported as ErrInvalidPeriodStatus or ErrInvalidPeriod.
func (m *PeriodModel) ToEntity() (*entity.Period, error) {
	status := entity.PeriodStatus(m.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("period %s of owner %s: %w %q", m.ID, m.OwnerID, domainerror.ErrInvalidPeriodStatus, m.Status)
	}
	key := valueobject.NewPeriodKey(m.Year, m.Month)
	if !key.IsValid() {
		return nil, domainerror.NewInvalidPeriodError(m.Year, m.Month)
	}

	return &entity.Period{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Key:       key,
		Status:    status,
		ClosedAt:  m.ClosedAt,
		ClosedBy:  m.ClosedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// PeriodFromEntity creates a PeriodModel from a domain Period entity.
func PeriodFromEntity(period *entity.Period) *PeriodModel {
	return &PeriodModel{
		ID:        period.ID,
		OwnerID:   period.OwnerID,
		Year:      period.Key.Year,
		Month:     int(period.Key.Month),
		Status:    string(period.Status),
		ClosedAt:  period.ClosedAt,
		ClosedBy:  period.ClosedBy,
		CreatedAt: period.CreatedAt,
		UpdatedAt: period.UpdatedAt,
	}
}
