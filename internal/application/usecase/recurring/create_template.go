package recurring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
)

// MaxDescriptionLength is the maximum allowed length for template descriptions.
const MaxDescriptionLength = 255

// CreateTemplateInput represents the input for recurring template creation.
type CreateTemplateInput struct {
	OwnerID     uuid.UUID
	Amount      decimal.Decimal
	Type        entity.TransactionType
	Description string
	CategoryID  *uuid.UUID
	WalletID    uuid.UUID
	DayOfMonth  int
	StartDate   time.Time
	EndDate     *time.Time
}

// CreateTemplateUseCase handles recurring template creation logic.
type CreateTemplateUseCase struct {
	templateRepo adapter.RecurringTemplateRepository
	walletRepo   adapter.WalletRepository
}

// NewCreateTemplateUseCase creates a new CreateTemplateUseCase instance.
func NewCreateTemplateUseCase(
	templateRepo adapter.RecurringTemplateRepository,
	walletRepo adapter.WalletRepository,
) *CreateTemplateUseCase {
	return &CreateTemplateUseCase{
		templateRepo: templateRepo,
		walletRepo:   walletRepo,
	}
}

// Execute validates and stores a new monthly template.
func (uc *CreateTemplateUseCase) Execute(ctx context.Context, input CreateTemplateInput) (*TemplateOutput, error) {
	if input.Description == "" || len(input.Description) > MaxDescriptionLength {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeRecurringDescription,
			fmt.Sprintf("description must be between 1 and %d characters", MaxDescriptionLength),
			nil,
		)
	}

	if !input.Type.IsValid() {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeInvalidRecurringType,
			"type must be 'expense' or 'income'",
			domainerror.ErrInvalidTransactionType,
		)
	}

	if input.Amount.IsZero() {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeInvalidRecurringAmount,
			"amount must not be zero",
			domainerror.ErrInvalidTransactionAmount,
		)
	}

	cadence := entity.Cadence{Frequency: entity.RecurrenceMonthly, DayOfMonth: input.DayOfMonth}
	if !cadence.IsValid() {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeInvalidCadence,
			"day of month must be between 1 and 31",
			domainerror.ErrInvalidCadence,
		)
	}

	if input.StartDate.IsZero() || (input.EndDate != nil && input.EndDate.Before(input.StartDate)) {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeInvalidTemplateDates,
			"start date is required and must not be after the end date",
			domainerror.ErrInvalidTemplateDates,
		)
	}

	wallet, err := uc.walletRepo.FindByID(ctx, input.WalletID)
	if err != nil && !errors.Is(err, domainerror.ErrWalletNotFound) {
		return nil, fmt.Errorf("failed to find wallet: %w", err)
	}
	if wallet == nil || wallet.OwnerID != input.OwnerID {
		return nil, domainerror.NewRecurringError(
			domainerror.ErrCodeRecurringWalletNotFound,
			"wallet not found",
			domainerror.ErrWalletNotFound,
		)
	}

	amount := input.Amount.Abs()
	if input.Type == entity.TransactionTypeExpense {
		amount = amount.Neg()
	}

	template := entity.NewRecurringTemplate(
		input.OwnerID,
		amount,
		input.Type,
		input.Description,
		input.CategoryID,
		input.WalletID,
		cadence,
		input.StartDate.UTC(),
		input.EndDate,
	)

	if err := uc.templateRepo.Create(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create recurring template: %w", err)
	}

	return toTemplateOutput(template), nil
}
