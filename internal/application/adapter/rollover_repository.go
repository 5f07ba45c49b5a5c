package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/domain/entity"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// RolloverRepository defines the interface for rollover record persistence.
type RolloverRepository interface {
	// FindByPeriod retrieves the rollover recorded for a source period.
	// Returns ErrRolloverNotFound if absent.
	FindByPeriod(ctx context.Context, ownerID uuid.UUID, from valueobject.PeriodKey) (*entity.RolloverRecord, error)

	// Create inserts the record unless one exists for the same owner and source period,
	// in which case it returns ErrDuplicateRollover.
	Create(ctx context.Context, record *entity.RolloverRecord) error
}
