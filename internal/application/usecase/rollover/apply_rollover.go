// Package rollover carries the residual balance of a closed period into the next one.
package rollover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// ApplyRolloverInput represents the input for carrying a period forward.
type ApplyRolloverInput struct {
	OwnerID   uuid.UUID
	FromYear  int
	FromMonth int
	Actor     uuid.UUID
}

// RolloverOutput represents the rollover recorded for a source period.
type RolloverOutput struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	From          valueobject.PeriodKey
	To            valueobject.PeriodKey
	Amount        decimal.Decimal
	TransactionID *uuid.UUID
	AppliedAt     time.Time
	AppliedBy     uuid.UUID
	// AlreadyApplied is true when an earlier or concurrent call recorded the rollover.
	AlreadyApplied bool
}

func toRolloverOutput(record *entity.RolloverRecord, alreadyApplied bool) *RolloverOutput {
	return &RolloverOutput{
		ID:             record.ID,
		OwnerID:        record.OwnerID,
		From:           record.From,
		To:             record.To(),
		Amount:         record.Amount,
		TransactionID:  record.TransactionID,
		AppliedAt:      record.AppliedAt,
		AppliedBy:      record.AppliedBy,
		AlreadyApplied: alreadyApplied,
	}
}

// ApplyRolloverUseCase posts the net balance of a closed period as an adjustment dated
// the first day of the following period. Each source period is carried at most once.
type ApplyRolloverUseCase struct {
	uow             adapter.UnitOfWork
	periodRepo      adapter.PeriodRepository
	rolloverRepo    adapter.RolloverRepository
	transactionRepo adapter.TransactionRepository
	creator         adapter.TransactionCreator
	metrics         adapter.MetricsRecorder
	clock           adapter.Clock
}

// NewApplyRolloverUseCase creates a new ApplyRolloverUseCase instance.
func NewApplyRolloverUseCase(
	uow adapter.UnitOfWork,
	periodRepo adapter.PeriodRepository,
	rolloverRepo adapter.RolloverRepository,
	transactionRepo adapter.TransactionRepository,
	creator adapter.TransactionCreator,
	metrics adapter.MetricsRecorder,
	clock adapter.Clock,
) *ApplyRolloverUseCase {
	return &ApplyRolloverUseCase{
		uow:             uow,
		periodRepo:      periodRepo,
		rolloverRepo:    rolloverRepo,
		transactionRepo: transactionRepo,
		creator:         creator,
		metrics:         metrics,
		clock:           clock,
	}
}

// Execute applies the rollover of the source period.
func (uc *ApplyRolloverUseCase) Execute(ctx context.Context, input ApplyRolloverInput) (*RolloverOutput, error) {
	key := valueobject.NewPeriodKey(input.FromYear, input.FromMonth)
	if !key.IsValid() || !key.Next().IsValid() {
		return nil, domainerror.NewInvalidPeriodError(input.FromYear, input.FromMonth)
	}

	var (
		record         *entity.RolloverRecord
		alreadyApplied bool
	)
	err := uc.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		record, alreadyApplied, err = uc.apply(ctx, input.OwnerID, key, input.Actor)
		return err
	})

	if errors.Is(err, domainerror.ErrDuplicateRollover) {
		record, err = uc.rolloverRepo.FindByPeriod(ctx, input.OwnerID, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read concurrent rollover: %w", err)
		}
		alreadyApplied = true
	} else if err != nil {
		return nil, err
	}

	if !alreadyApplied {
		uc.metrics.RecordRollover(record.Amount)
		slog.InfoContext(ctx, "Rollover applied",
			"owner_id", input.OwnerID,
			"period", key.String(),
			"amount", record.Amount.String(),
		)
	}

	return toRolloverOutput(record, alreadyApplied), nil
}

func (uc *ApplyRolloverUseCase) apply(ctx context.Context, ownerID uuid.UUID, key valueobject.PeriodKey, actor uuid.UUID) (*entity.RolloverRecord, bool, error) {
	period, err := uc.periodRepo.EnsureAndLock(ctx, ownerID, key, adapter.LockShare)
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock period: %w", err)
	}
	if !period.IsClosed() {
		return nil, false, domainerror.NewPeriodNotClosedError(key)
	}

	existing, err := uc.rolloverRepo.FindByPeriod(ctx, ownerID, key)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, domainerror.ErrRolloverNotFound) {
		return nil, false, fmt.Errorf("failed to read rollover: %w", err)
	}

	totals, err := uc.transactionRepo.GetTotals(ctx, ownerID, key.FirstDay(), key.Next().FirstDay())
	if err != nil {
		return nil, false, fmt.Errorf("failed to total period: %w", err)
	}

	var transactionID *uuid.UUID
	amount := totals.NetTotal
	if !amount.IsZero() {
		transactionType := entity.TransactionTypeIncome
		if amount.IsNegative() {
			transactionType = entity.TransactionTypeExpense
		}

		adjustment := entity.NewTransaction(
			ownerID,
			nil,
			key.Next().FirstDay(),
			fmt.Sprintf("Rollover from %s", key),
			amount,
			transactionType,
			nil,
			"",
		)
		adjustment.IsRollover = true

		if _, err := uc.creator.CreateTransaction(ctx, adjustment); err != nil {
			return nil, false, err
		}
		transactionID = &adjustment.ID
	}

	record := entity.NewRolloverRecord(ownerID, key, amount, transactionID, actor, uc.clock.Now().UTC())
	if err := uc.rolloverRepo.Create(ctx, record); err != nil {
		return nil, false, err
	}
	return record, false, nil
}

// HandlePeriodClosed applies the rollover for a period.closed event.
func (uc *ApplyRolloverUseCase) HandlePeriodClosed(ctx context.Context, event entity.PeriodClosedEvent) error {
	_, err := uc.Execute(ctx, ApplyRolloverInput{
		OwnerID:   event.OwnerID,
		FromYear:  event.Key.Year,
		FromMonth: int(event.Key.Month),
		Actor:     event.ClosedBy,
	})
	return err
}
