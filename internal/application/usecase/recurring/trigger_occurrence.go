package recurring

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// TriggerOccurrenceInput represents an on-demand generation request.
type TriggerOccurrenceInput struct {
	OwnerID    uuid.UUID
	TemplateID uuid.UUID
	Year       int
	Month      int
}

// TriggerOccurrenceUseCase generates one of the caller's templates into a period on demand.
type TriggerOccurrenceUseCase struct {
	templateRepo adapter.RecurringTemplateRepository
	generator    *GenerateOccurrenceUseCase
}

// NewTriggerOccurrenceUseCase creates a new TriggerOccurrenceUseCase instance.
func NewTriggerOccurrenceUseCase(templateRepo adapter.RecurringTemplateRepository, generator *GenerateOccurrenceUseCase) *TriggerOccurrenceUseCase {
	return &TriggerOccurrenceUseCase{
		templateRepo: templateRepo,
		generator:    generator,
	}
}

// Execute loads the template, checks ownership and runs the generator.
func (uc *TriggerOccurrenceUseCase) Execute(ctx context.Context, input TriggerOccurrenceInput) (*GenerateOccurrenceOutput, error) {
	key := valueobject.NewPeriodKey(input.Year, input.Month)
	if !key.IsValid() {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeInvalidRecurringPeriod,
			fmt.Sprintf("invalid period %04d-%02d", input.Year, input.Month),
			domainerror.ErrInvalidPeriod,
		)
	}

	template, err := findOwnedTemplate(ctx, uc.templateRepo, input.TemplateID, input.OwnerID)
	if err != nil {
		return nil, err
	}

	return uc.generator.Execute(ctx, GenerateOccurrenceInput{Template: template, Period: key})
}
