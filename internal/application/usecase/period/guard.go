package period

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// Guard rejects writes dated inside closed periods.
type Guard struct {
	periodRepo adapter.PeriodRepository
	metrics    adapter.MetricsRecorder
}

// NewGuard creates a new Guard instance.
func NewGuard(periodRepo adapter.PeriodRepository, metrics adapter.MetricsRecorder) *Guard {
	return &Guard{
		periodRepo: periodRepo,
		metrics:    metrics,
	}
}

// AssertWritable checks that the period containing date is open. It must be called with
// the context of the transaction performing the write: the period row is share-locked
// until that transaction ends, so a concurrent close waits for the write to commit.
// A failed lookup is reported as ErrPeriodStatusUnavailable and the write is refused.
func (g *Guard) AssertWritable(ctx context.Context, ownerID uuid.UUID, date time.Time) error {
	key := valueobject.PeriodKeyOf(date)
	if !key.IsValid() {
		return domainerror.NewInvalidPeriodError(key.Year, int(key.Month))
	}

	period, err := g.periodRepo.EnsureAndLock(ctx, ownerID, key, adapter.LockShare)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read period status",
			"owner_id", ownerID,
			"period", key.String(),
			"error", err,
		)
		return domainerror.NewPeriodStatusUnavailableError(key, err)
	}

	if period.IsClosed() {
		g.metrics.RecordLockRejection()
		return domainerror.NewPeriodLockedError(key)
	}
	return nil
}
