package transaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
)

// DeleteTransactionInput represents the input for transaction deletion.
type DeleteTransactionInput struct {
	TransactionID uuid.UUID
	UserID        uuid.UUID
}

// DeleteTransactionOutput represents the output of transaction deletion.
type DeleteTransactionOutput struct {
	Success bool
}

// DeleteTransactionUseCase handles transaction deletion logic.
type DeleteTransactionUseCase struct {
	uow             adapter.UnitOfWork
	guard           adapter.PeriodGuard
	transactionRepo adapter.TransactionRepository
}

// NewDeleteTransactionUseCase creates a new DeleteTransactionUseCase instance.
func NewDeleteTransactionUseCase(
	uow adapter.UnitOfWork,
	guard adapter.PeriodGuard,
	transactionRepo adapter.TransactionRepository,
) *DeleteTransactionUseCase {
	return &DeleteTransactionUseCase{
		uow:             uow,
		guard:           guard,
		transactionRepo: transactionRepo,
	}
}

// Execute performs the transaction deletion (soft delete). Transactions in closed periods
// cannot be deleted.
func (uc *DeleteTransactionUseCase) Execute(ctx context.Context, input DeleteTransactionInput) (*DeleteTransactionOutput, error) {
	err := uc.uow.Do(ctx, func(ctx context.Context) error {
		transaction, err := findOwnedTransaction(ctx, uc.transactionRepo, input.TransactionID, input.UserID)
		if err != nil {
			return err
		}

		if err := uc.guard.AssertWritable(ctx, transaction.UserID, transaction.Date); err != nil {
			return err
		}

		if err := uc.transactionRepo.Delete(ctx, transaction.ID); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &DeleteTransactionOutput{
		Success: true,
	}, nil
}
