package period

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
)

// TransitionInput represents the input for closing or reopening a period.
type TransitionInput struct {
	OwnerID uuid.UUID
	Year    int
	Month   int
	ActorID uuid.UUID
}

// TransitionOutput represents the result of a close or reopen command.
type TransitionOutput struct {
	Period *PeriodOutput
	// Transitioned is false when the period was already in the requested state.
	Transitioned bool
}

// ClosePeriodUseCase locks a period against further writes.
type ClosePeriodUseCase struct {
	uow        adapter.UnitOfWork
	periodRepo adapter.PeriodRepository
	publisher  adapter.PeriodEventPublisher
	metrics    adapter.MetricsRecorder
	clock      adapter.Clock
}

// NewClosePeriodUseCase creates a new ClosePeriodUseCase instance. publisher may be nil
// when nothing reacts to closed periods.
func NewClosePeriodUseCase(
	uow adapter.UnitOfWork,
	periodRepo adapter.PeriodRepository,
	publisher adapter.PeriodEventPublisher,
	metrics adapter.MetricsRecorder,
	clock adapter.Clock,
) *ClosePeriodUseCase {
	return &ClosePeriodUseCase{
		uow:        uow,
		periodRepo: periodRepo,
		publisher:  publisher,
		metrics:    metrics,
		clock:      clock,
	}
}

// Execute closes the period. Closing a closed period succeeds without touching closed_at
// or closed_by. The period.closed event is only published on an actual transition, after
// commit; a publish failure is logged and the close stands.
func (uc *ClosePeriodUseCase) Execute(ctx context.Context, input TransitionInput) (*TransitionOutput, error) {
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

		transitioned = p.Close(input.ActorID, uc.clock.Now().UTC())
		if transitioned {
			if err := uc.periodRepo.Update(ctx, p); err != nil {
				return fmt.Errorf("failed to close period: %w", err)
			}
		}
		period = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if transitioned {
		uc.metrics.RecordPeriodTransition(entity.PeriodStatusClosed)
		slog.InfoContext(ctx, "Period closed",
			"owner_id", input.OwnerID,
			"period", key.String(),
			"actor_id", input.ActorID,
		)
		uc.publish(ctx, period)
	}

	return &TransitionOutput{
		Period:       toPeriodOutput(period),
		Transitioned: transitioned,
	}, nil
}

func (uc *ClosePeriodUseCase) publish(ctx context.Context, period *entity.Period) {
	if uc.publisher == nil {
		return
	}

	event := entity.PeriodClosedEvent{
		OwnerID:  period.OwnerID,
		Key:      period.Key,
		ClosedBy: *period.ClosedBy,
		ClosedAt: *period.ClosedAt,
	}
	if err := uc.publisher.PublishPeriodClosed(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish period closed event",
			"owner_id", period.OwnerID,
			"period", period.Key.String(),
			"error", err,
		)
	}
}
