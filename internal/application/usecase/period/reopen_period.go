package period

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
)

// ReopenPeriodUseCase unlocks a closed period. Rollovers already applied from it are kept.
type ReopenPeriodUseCase struct {
	uow        adapter.UnitOfWork
	periodRepo adapter.PeriodRepository
	metrics    adapter.MetricsRecorder
	clock      adapter.Clock
}

// NewReopenPeriodUseCase creates a new ReopenPeriodUseCase instance.
func NewReopenPeriodUseCase(
	uow adapter.UnitOfWork,
	periodRepo adapter.PeriodRepository,
	metrics adapter.MetricsRecorder,
	clock adapter.Clock,
) *ReopenPeriodUseCase {
	return &ReopenPeriodUseCase{
		uow:        uow,
		periodRepo: periodRepo,
		metrics:    metrics,
		clock:      clock,
	}
}

// Execute reopens the period. Reopening an open period is a successful no-op.
func (uc *ReopenPeriodUseCase) Execute(ctx context.Context, input TransitionInput) (*TransitionOutput, error) {
	key, err := parseKey(input.Year, input.Month)
	if err != nil {
		return nil, err
	}

	var (
		period       *entity.Period
		transitioned bool
	)
	err = uc.uow.Do(ctx, func(ctx context.Context) error {
		p, err := uc.periodRepo.EnsureAndLock(ctx, input.OwnerID, key, adapter.LockUpdate)
		if err != nil {
			return fmt.Errorf("failed to lock period: %w", err)
		}

		transitioned = p.Reopen(uc.clock.Now().UTC())
		if transitioned {
			if err := uc.periodRepo.Update(ctx, p); err != nil {
				return fmt.Errorf("failed to reopen period: %w", err)
			}
		}
		period = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		uc.metrics.RecordPeriodTransition(entity.PeriodStatusOpen)
		slog.InfoContext(ctx, "Period reopened",
			"owner_id", input.OwnerID,
			"period", key.String(),
			"actor_id", input.ActorID,
		)
	}

	return &TransitionOutput{
		Period:       toPeriodOutput(period),
		Transitioned: transitioned,
	}, nil
}
