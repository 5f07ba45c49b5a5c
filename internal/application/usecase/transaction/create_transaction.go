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

// CreateTransactionInput represents the input for transaction creation.
type CreateTransactionInput struct {
	UserID      uuid.UUID
	WalletID    *uuid.UUID
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Type        entity.TransactionType
	CategoryID  *uuid.UUID
	Notes       string
}

// CreateTransactionUseCase handles transaction creation logic.
type CreateTransactionUseCase struct {
	uow        adapter.UnitOfWork
	writer     adapter.TransactionCreator
	walletRepo adapter.WalletRepository
}

// NewCreateTransactionUseCase creates a new CreateTransactionUseCase instance.
func NewCreateTransactionUseCase(
	uow adapter.UnitOfWork,
	writer adapter.TransactionCreator,
	walletRepo adapter.WalletRepository,
) *CreateTransactionUseCase {
	return &CreateTransactionUseCase{
		uow:        uow,
		writer:     writer,
		walletRepo: walletRepo,
	}
}

// Execute performs the transaction creation. Transactions dated inside a closed period
// are rejected with a PeriodError.
func (uc *CreateTransactionUseCase) Execute(ctx context.Context, input CreateTransactionInput) (*TransactionOutput, error) {
	if err := validateText(input.Description, input.Notes); err != nil {
		return nil, err
	}

	if !input.Type.IsValid() {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidTransactionType,
			"transaction type must be 'expense' or 'income'",
			domainerror.ErrInvalidTransactionType,
		)
	}

	if input.Amount.IsZero() {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidTransactionAmount,
			"amount must not be zero",
			domainerror.ErrInvalidTransactionAmount,
		)
	}

	if input.Date.IsZero() {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidTransactionDate,
			"date is required",
			domainerror.ErrInvalidTransactionDate,
		)
	}

	if input.WalletID != nil {
		if err := checkWalletOwner(ctx, uc.walletRepo, *input.WalletID, input.UserID); err != nil {
			return nil, err
		}
	}

	transaction := entity.NewTransaction(
		input.UserID,
		input.WalletID,
		calendarDate(input.Date),
		input.Description,
		signedAmount(input.Amount, input.Type),
		input.Type,
		input.CategoryID,
		input.Notes,
	)

	err := uc.uow.Do(ctx, func(ctx context.Context) error {
		_, err := uc.writer.CreateTransaction(ctx, transaction)
		return err
	})
	if err != nil {
		return nil, err
	}

	return ToTransactionOutput(transaction), nil
}

func checkWalletOwner(ctx context.Context, walletRepo adapter.WalletRepository, walletID, userID uuid.UUID) error {
	wallet, err := walletRepo.FindByID(ctx, walletID)
	if err != nil {
		if errors.Is(err, domainerror.ErrWalletNotFound) {
			return domainerror.NewTransactionError(
				domainerror.ErrCodeTxnWalletNotOwned,
				"wallet not found",
				domainerror.ErrWalletNotOwnedByUser,
			)
		}
		return fmt.Errorf("failed to find wallet: %w", err)
	}

	if wallet.OwnerID != userID {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeTxnWalletNotOwned,
			"wallet does not belong to user",
			domainerror.ErrWalletNotOwnedByUser,
		)
	}
	return nil
}
