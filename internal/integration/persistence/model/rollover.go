package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/period-engine/internal/domain/entity"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// RolloverModel represents the period_rollovers table in the database.
type RolloverModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_rollover_owner_period,priority:1"`
	FromYear      int             `gorm:"not null;uniqueIndex:ux_rollover_owner_period,priority:2"`
	FromMonth     int             `gorm:"not null;uniqueIndex:ux_rollover_owner_period,priority:3"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TransactionID *uuid.UUID      `gorm:"type:uuid"`
	AppliedAt     time.Time       `gorm:"not null"`
	AppliedBy     uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for the RolloverModel.
func (RolloverModel) TableName() string {
	return "period_rollovers"
}

// ToEntity converts a RolloverModel to a domain RolloverRecord entity.
func (m *RolloverModel) ToEntity() *entity.RolloverRecord {
	return &entity.RolloverRecord{
		ID:            m.ID,
		OwnerID:       m.OwnerID,
		From:          valueobject.NewPeriodKey(m.FromYear, m.FromMonth),
		Amount:        m.Amount,
		TransactionID: m.TransactionID,
		AppliedAt:     m.AppliedAt,
		AppliedBy:     m.AppliedBy,
	}
}

// RolloverFromEntity creates a RolloverModel from a domain RolloverRecord entity.
func RolloverFromEntity(record *entity.RolloverRecord) *RolloverModel {
	return &RolloverModel{
		ID:            record.ID,
		OwnerID:       record.OwnerID,
		FromYear:      record.From.Year,
		FromMonth:     int(record.From.Month),
		Amount:        record.Amount,
		TransactionID: record.TransactionID,
		AppliedAt:     record.AppliedAt,
		AppliedBy:     record.AppliedBy,
	}
}
