// Package period contains the period ledger use cases: status lookup, close, reopen and
// the write guard that keeps closed periods immutable.
package period

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/domain/entity"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// PeriodOutput represents the lock state of a period.
type PeriodOutput struct {
	OwnerID  uuid.UUID
	Key      valueobject.PeriodKey
	Status   entity.PeriodStatus
	ClosedAt *time.Time
	ClosedBy *uuid.UUID
}

func toPeriodOutput(period *entity.Period) *PeriodOutput {
	return &PeriodOutput{
		OwnerID:  period.OwnerID,
		Key:      period.Key,
		Status:   period.Status,
		ClosedAt: period.ClosedAt,
		ClosedBy: period.ClosedBy,
	}
}

// implicitOpen describes a period that has never been stored.
func implicitOpen(ownerID uuid.UUID, key valueobject.PeriodKey) *PeriodOutput {
	return &PeriodOutput{
		OwnerID: ownerID,
		Key:     key,
		Status:  entity.PeriodStatusOpen,
	}
}

// parseKey validates a year/month pair.
func parseKey(year, month int) (valueobject.PeriodKey, error) {
	key := valueobject.NewPeriodKey(year, month)
	if !key.IsValid() {
		return valueobject.PeriodKey{}, domainerror.NewInvalidPeriodError(year, month)
	}
	return key, nil
}
