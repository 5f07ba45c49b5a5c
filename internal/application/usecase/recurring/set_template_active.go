package recurring

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
)

// SetTemplateActiveInput represents the input for activating or deactivating a template.
type SetTemplateActiveInput struct {
	OwnerID    uuid.UUID
	TemplateID uuid.UUID
	Active     bool
}

// SetTemplateActiveUseCase toggles whether a template keeps producing occurrences.
// Occurrences already generated are kept.
type SetTemplateActiveUseCase struct {
	templateRepo adapter.RecurringTemplateRepository
	clock        adapter.Clock
}

// NewSetTemplateActiveUseCase creates a new SetTemplateActiveUseCase instance.
func NewSetTemplateActiveUseCase(templateRepo adapter.RecurringTemplateRepository, clock adapter.Clock) *SetTemplateActiveUseCase {
	return &SetTemplateActiveUseCase{
		templateRepo: templateRepo,
		clock:        clock,
	}
}

// Execute updates the active flag.
func (uc *SetTemplateActiveUseCase) Execute(ctx context.Context, input SetTemplateActiveInput) (*TemplateOutput, error) {
	template, err := findOwnedTemplate(ctx, uc.templateRepo, input.TemplateID, input.OwnerID)
	if err != nil {
		return nil, err
	}

	if template.Active != input.Active {
		template.Active = input.Active
		template.UpdatedAt = uc.clock.Now().UTC()
		if err := uc.templateRepo.Update(ctx, template); err != nil {
			return nil, fmt.Errorf("failed to update recurring template: %w", err)
		}
	}

	return toTemplateOutput(template), nil
}

func findOwnedTemplate(ctx context.Context, templateRepo adapter.RecurringTemplateRepository, templateID, ownerID uuid.UUID) (*entity.RecurringTemplate, error) {
	template, err := templateRepo.FindByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, domainerror.ErrTemplateNotFound) {
			return nil, domainerror.NewRecurringError(
				domainerror.ErrCodeTemplateNotFound,
				"recurring template not found",
				domainerror.ErrTemplateNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find recurring template: %w", err)
	}

	if template.OwnerID != ownerID {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeNotAuthorizedTemplate,
			"not authorized to modify this recurring template",
			domainerror.ErrNotAuthorizedToModifyTemplate,
		)
	}
	return template, nil
}
