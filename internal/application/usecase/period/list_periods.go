package period

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// ListPeriodsInput represents the input for listing the periods of a year.
type ListPeriodsInput struct {
	OwnerID uuid.UUID
	Year    int
}

// ListPeriodsUseCase lists the twelve periods of a year with their lock state.
type ListPeriodsUseCase struct {
	periodRepo adapter.PeriodRepository
}

// NewListPeriodsUseCase creates a new ListPeriodsUseCase instance.
func NewListPeriodsUseCase(periodRepo adapter.PeriodRepository) *ListPeriodsUseCase {
	return &ListPeriodsUseCase{
		periodRepo: periodRepo,
	}
}

// Execute returns January through December, filling months without a row as open.
func (uc *ListPeriodsUseCase) Execute(ctx context.Context, input ListPeriodsInput) ([]*PeriodOutput, error) {
	if _, err := parseKey(input.Year, int(time.January)); err != nil {
		return nil, err
	}

	stored, err := uc.periodRepo.ListByOwner(ctx, input.OwnerID, input.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}

	byMonth := make(map[time.Month]*PeriodOutput, len(stored))
	for _, p := range stored {
		byMonth[p.Key.Month] = toPeriodOutput(p)
	}

	periods := make([]*PeriodOutput, 0, 12)
	for month := time.January; month <= time.December; month++ {
		if p, ok := byMonth[month]; ok {
			periods = append(periods, p)
			continue
		}
		periods = append(periods, implicitOpen(input.OwnerID, valueobject.NewPeriodKey(input.Year, int(month))))
	}
	return periods, nil
}
