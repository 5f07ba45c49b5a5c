// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// RolloverRecord marks that the residual of a closed period was carried into the next one.
// At most one exists per (owner, from period).
type RolloverRecord struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	From          valueobject.PeriodKey
	Amount        decimal.Decimal
	TransactionID *uuid.UUID // Nil when the carried amount was zero
	AppliedAt     time.Time
	AppliedBy     uuid.UUID
}

// NewRolloverRecord creates a rollover record for the given source period.
func NewRolloverRecord(ownerID uuid.UUID, from valueobject.PeriodKey, amount decimal.Decimal, transactionID *uuid.UUID, actor uuid.UUID, now time.Time) *RolloverRecord {
	return &RolloverRecord{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		From:          from,
		Amount:        amount,
		TransactionID: transactionID,
		AppliedAt:     now,
		AppliedBy:     actor,
	}
}

// To returns the period the adjustment was dated into.
func (r *RolloverRecord) To() valueobject.PeriodKey {
	return r.From.Next()
}
