package transaction

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

// UpdateTransactionInput represents the input for transaction update.
type UpdateTransactionInput struct {
	TransactionID uuid.UUID
	UserID        uuid.UUID
	Date          *time.Time
	Description   *string
	Amount        *decimal.Decimal
	Type          *entity.TransactionType
	CategoryID    *uuid.UUID
	ClearCategory bool // Set to true to remove category
	Notes         *string
}

// UpdateTransactionUseCase handles transaction update logic.
type UpdateTransactionUseCase struct {
	uow             adapter.UnitOfWork
	guard           adapter.PeriodGuard
	transactionRepo adapter.TransactionRepository
	clock           adapter.Clock
}

// NewUpdateTransactionUseCase creates a new UpdateTransactionUseCase instance.
func NewUpdateTransactionUseCase(
	uow adapter.UnitOfWork,
	guard adapter.PeriodGuard,
	transactionRepo adapter.TransactionRepository,
	clock adapter.Clock,
) *UpdateTransactionUseCase {
	return &UpdateTransactionUseCase{
		uow:             uow,
		guard:           guard,
		transactionRepo: transactionRepo,
		clock:           clock,
	}
}

// Execute performs the transaction update. Both the period the transaction currently
// belongs to and the period it moves into must be open.
func (uc *UpdateTransactionUseCase) Execute(ctx context.Context, input UpdateTransactionInput) (*TransactionOutput, error) {
	var updated *entity.Transaction

	err := uc.uow.Do(ctx, func(ctx context.Context) error {
		transaction, err := findOwnedTransaction(ctx, uc.transactionRepo, input.TransactionID, input.UserID)
		if err != nil {
			return err
		}

		if err := uc.guard.AssertWritable(ctx, transaction.UserID, transaction.Date); err != nil {
			return err
		}

		if err := applyUpdate(transaction, input); err != nil {
			return err
		}

		if err := uc.guard.AssertWritable(ctx, transaction.UserID, transaction.Date); err != nil {
			return err
		}

		transaction.UpdatedAt = uc.clock.Now().UTC()
		if err := uc.transactionRepo.Update(ctx, transaction); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		updated = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ToTransactionOutput(updated), nil
}

func applyUpdate(transaction *entity.Transaction, input UpdateTransactionInput) error {
	description := transaction.Description
	if input.Description != nil {
		description = *input.Description
	}
	notes := transaction.Notes
	if input.Notes != nil {
		notes = *input.Notes
	}
	if err := validateText(description, notes); err != nil {
		return err
	}
	transaction.Description = description
	transaction.Notes = notes

	if input.Type != nil {
		if !input.Type.IsValid() {
			return domainerror.NewTransactionError(
				domainerror.ErrCodeInvalidTransactionType,
				"transaction type must be 'expense' or 'income'",
				domainerror.ErrInvalidTransactionType,
			)
		}
		transaction.Type = *input.Type
	}

	if input.Amount != nil {
		if input.Amount.IsZero() {
			return domainerror.NewTransactionError(
				domainerror.ErrCodeInvalidTransactionAmount,
				"amount must not be zero",
				domainerror.ErrInvalidTransactionAmount,
			)
		}
		transaction.Amount = *input.Amount
	}
	transaction.Amount = signedAmount(transaction.Amount, transaction.Type)

	if input.Date != nil {
		transaction.Date = calendarDate(*input.Date)
	}

	if input.ClearCategory {
		transaction.CategoryID = nil
	} else if input.CategoryID != nil {
		transaction.CategoryID = input.CategoryID
	}
	return nil
}

func findOwnedTransaction(ctx context.Context, transactionRepo adapter.TransactionRepository, transactionID, userID uuid.UUID) (*entity.Transaction, error) {
	transaction, err := transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, domainerror.ErrTransactionNotFound) {
			return nil, domainerror.NewTransactionError(
				domainerror.ErrCodeTransactionNotFound,
				"transaction not found",
				domainerror.ErrTransactionNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	if transaction.UserID != userID {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeNotAuthorizedTransaction,
			"not authorized to modify this transaction",
			domainerror.ErrNotAuthorizedToModifyTransaction,
		)
	}
	return transaction, nil
}
