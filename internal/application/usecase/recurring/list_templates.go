package recurring

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
)

// ListTemplatesInput represents the input for listing templates.
type ListTemplatesInput struct {
	OwnerID    uuid.UUID
	ActiveOnly bool
}

// ListTemplatesUseCase lists an owner's recurring templates.
type ListTemplatesUseCase struct {
	templateRepo adapter.RecurringTemplateRepository
}

// NewListTemplatesUseCase creates a new ListTemplatesUseCase instance.
func NewListTemplatesUseCase(templateRepo adapter.RecurringTemplateRepository) *ListTemplatesUseCase {
	return &ListTemplatesUseCase{
		templateRepo: templateRepo,
	}
}

// Execute returns the templates in creation order.
func (uc *ListTemplatesUseCase) Execute(ctx context.Context, input ListTemplatesInput) ([]*TemplateOutput, error) {
	templates, err := uc.templateRepo.FindByOwner(ctx, input.OwnerID, input.ActiveOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring templates: %w", err)
	}

	outputs := make([]*TemplateOutput, len(templates))
	for i, template := range templates {
		outputs[i] = toTemplateOutput(template)
	}
	return outputs, nil
}
