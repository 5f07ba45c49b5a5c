package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/domain/entity"
	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// RecurringTemplateRepository defines the interface for recurring template persistence.
type RecurringTemplateRepository interface {
	// Create stores a new template.
	Create(ctx context.Context, template *entity.RecurringTemplate) error

	// FindByID retrieves a template by its ID. Returns ErrTemplateNotFound if absent.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.RecurringTemplate, error)

	// FindByOwner retrieves the templates of an owner, optionally only the active ones.
	FindByOwner(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]*entity.RecurringTemplate, error)

	// FindActive retrieves the active templates of every owner.
	FindActive(ctx context.Context) ([]*entity.RecurringTemplate, error)

	// Update persists the mutable fields of a template.
	Update(ctx context.Context, template *entity.RecurringTemplate) error
}

// OccurrenceFilter defines filter options for listing occurrences.
type OccurrenceFilter struct {
	OwnerID    uuid.UUID
	TemplateID *uuid.UUID
	Period     *valueobject.PeriodKey
	From       *valueobject.PeriodKey // Inclusive lower bound on the period
	Outcome    *entity.OccurrenceOutcome
}

// RecurringOccurrenceRepository defines the interface for occurrence persistence.
type RecurringOccurrenceRepository interface {
	// FindByTemplateAndPeriod retrieves the occurrence of a template in a period, locking
	// the row when called inside a transaction. Returns ErrOccurrenceNotFound if absent.
	FindByTemplateAndPeriod(ctx context.Context, templateID uuid.UUID, key valueobject.PeriodKey) (*entity.RecurringOccurrence, error)

	// Save inserts a new occurrence if none exists for its template and period, or updates
	// a stored occurrence whose outcome is still failed. Returns ErrDuplicateOccurrence
	// when neither applies because another attempt recorded it first.
	Save(ctx context.Context, occurrence *entity.RecurringOccurrence) error

	// List retrieves occurrences matching the filter, newest period first.
	List(ctx context.Context, filter OccurrenceFilter) ([]*entity.RecurringOccurrence, error)
}

// TransactionCreator creates a ledger transaction on behalf of the engine. Implementations
// enforce the period lock and join the transaction carried by ctx.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, transaction *entity.Transaction) (*entity.Transaction, error)
}
