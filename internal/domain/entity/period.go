// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// PeriodStatus represents the lock state of an accounting period.
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "open"
	PeriodStatusClosed PeriodStatus = "closed"
)

// IsValid reports whether the status is one of the known states.
func (s PeriodStatus) IsValid() bool {
	switch s {
	case PeriodStatusOpen, PeriodStatusClosed:
		return true
	default:
		return false
	}
}

// Period represents the lock state of one (owner, year, month) accounting window.
// A period without a stored row is implicitly open.
type Period struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Key       valueobject.PeriodKey
	Status    PeriodStatus
	ClosedAt  *time.Time
	ClosedBy  *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOpenPeriod creates the implicit open state of a period.
func NewOpenPeriod(ownerID uuid.UUID, key valueobject.PeriodKey, now time.Time) *Period {
	return &Period{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Key:       key,
		Status:    PeriodStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsClosed reports whether writes into the period are locked.
func (p *Period) IsClosed() bool {
	return p.Status == PeriodStatusClosed
}

// Close transitions the period to closed. It returns false when the period was already closed,
// in which case closed_at and closed_by are left untouched.
func (p *Period) Close(actor uuid.UUID, now time.Time) bool {
	if p.IsClosed() {
		return false
	}
	p.Status = PeriodStatusClosed
	p.ClosedAt = &now
	p.ClosedBy = &actor
	p.UpdatedAt = now
	return true
}

// Reopen transitions the period back to open and clears the close audit fields.
// It returns false when the period was already open.
func (p *Period) Reopen(now time.Time) bool {
	if !p.IsClosed() {
		return false
	}
	p.Status = PeriodStatusOpen
	p.ClosedAt = nil
	p.ClosedBy = nil
	p.UpdatedAt = now
	return true
}

// PeriodClosedEvent is emitted after a period transitions from open to closed.
type PeriodClosedEvent struct {
	OwnerID  uuid.UUID
	Key      valueobject.PeriodKey
	ClosedBy uuid.UUID
	ClosedAt time.Time
}
