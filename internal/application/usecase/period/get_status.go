package period

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
)

// GetStatusInput represents the input for a period status lookup.
type GetStatusInput struct {
	OwnerID uuid.UUID
	Year    int
	Month   int
}

// GetStatusUseCase reports whether a period is open or closed.
type GetStatusUseCase struct {
	periodRepo adapter.PeriodRepository
}

// NewGetStatusUseCase creates a new GetStatusUseCase instance.
func NewGetStatusUseCase(periodRepo adapter.PeriodRepository) *GetStatusUseCase {
	return &GetStatusUseCase{
		periodRepo: periodRepo,
	}
}

// Execute returns the stored state of the period, or open when it was never stored.
func (uc *GetStatusUseCase) Execute(ctx context.Context, input GetStatusInput) (*PeriodOutput, error) {
	key, err := parseKey(input.Year, input.Month)
	if err != nil {
		return nil, err
	}

	period, err := uc.periodRepo.FindByKey(ctx, input.OwnerID, key)
	if err != nil {
		if errors.Is(err, domainerror.ErrPeriodNotFound) {
			return implicitOpen(input.OwnerID, key), nil
		}
		return nil, fmt.Errorf("failed to get period status: %w", err)
	}

	return toPeriodOutput(period), nil
}
