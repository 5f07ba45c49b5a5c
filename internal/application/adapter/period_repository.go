package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/domain/entity"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// LockMode selects the row lock taken when reading a period inside a transaction.
type LockMode int

const (
	// LockShare lets concurrent writers proceed while blocking a concurrent close or reopen.
	LockShare LockMode = iota
	// LockUpdate is taken by close and reopen.
	LockUpdate
)

// PeriodRepository defines the interface for period persistence operations.
type PeriodRepository interface {
	// FindByKey retrieves a period without locking. Returns ErrPeriodNotFound when no
	// row exists.
	FindByKey(ctx context.Context, ownerID uuid.UUID, key valueobject.PeriodKey) (*entity.Period, error)

	// EnsureAndLock creates the period as open if it has no row yet, then reads it
	// holding the requested lock until the surrounding transaction ends.
	EnsureAndLock(ctx context.Context, ownerID uuid.UUID, key valueobject.PeriodKey, mode LockMode) (*entity.Period, error)

	// Update persists the status and audit fields of a period.
	Update(ctx context.Context, period *entity.Period) error

	// ListByOwner returns the stored periods of an owner for a year, ordered by month.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, year int) ([]*entity.Period, error)
}

// PeriodGuard rejects writes dated inside closed periods.
type PeriodGuard interface {
	// AssertWritable returns a PeriodError wrapping ErrPeriodLocked when the period
	// containing date is closed, or wrapping ErrPeriodStatusUnavailable when the
	// status cannot be determined.
	AssertWritable(ctx context.Context, ownerID uuid.UUID, date time.Time) error
}

// PeriodEventPublisher delivers period lifecycle events to interested components.
type PeriodEventPublisher interface {
	PublishPeriodClosed(ctx context.Context, event entity.PeriodClosedEvent) error
}
