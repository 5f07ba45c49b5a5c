package recurring

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// ListOccurrencesInput represents the filters of the occurrence history.
type ListOccurrencesInput struct {
	OwnerID    uuid.UUID
	TemplateID *uuid.UUID
	Period     *valueobject.PeriodKey
	Outcome    *entity.OccurrenceOutcome
}

// ListOccurrencesUseCase returns the generation history, including failed attempts with
// their error text.
type ListOccurrencesUseCase struct {
	occurrenceRepo adapter.RecurringOccurrenceRepository
}

// NewListOccurrencesUseCase creates a new ListOccurrencesUseCase instance.
func NewListOccurrencesUseCase(occurrenceRepo adapter.RecurringOccurrenceRepository) *ListOccurrencesUseCase {
	return &ListOccurrencesUseCase{
		occurrenceRepo: occurrenceRepo,
	}
}

// Execute lists the owner's occurrences, newest period first.
func (uc *ListOccurrencesUseCase) Execute(ctx context.Context, input ListOccurrencesInput) ([]*OccurrenceOutput, error) {
	if input.Period != nil && !input.Period.IsValid() {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeInvalidRecurringPeriod,
			fmt.Sprintf("invalid period %s", input.Period),
			domainerror.ErrInvalidPeriod,
		)
	}

	occurrences, err := uc.occurrenceRepo.List(ctx, adapter.OccurrenceFilter{
		OwnerID:    input.OwnerID,
		TemplateID: input.TemplateID,
		Period:     input.Period,
		Outcome:    input.Outcome,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list occurrences: %w", err)
	}

	outputs := make([]*OccurrenceOutput, len(occurrences))
	for i, occurrence := range occurrences {
		outputs[i] = toOccurrenceOutput(occurrence)
	}
	return outputs, nil
}
