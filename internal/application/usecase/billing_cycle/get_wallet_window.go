package billingcycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
)

// GetWalletWindowInput represents the input for a wallet statement lookup.
type GetWalletWindowInput struct {
	UserID        uuid.UUID
	WalletID      uuid.UUID
	ReferenceDate *time.Time // Defaults to now
}

// GetWalletWindowOutput represents a wallet's statement for one billing cycle.
type GetWalletWindowOutput struct {
	WalletID     uuid.UUID
	Window       *WindowOutput
	ChargesTotal decimal.Decimal // Sum of expenses in the window (negative)
	CreditsTotal decimal.Decimal // Sum of payments and refunds in the window
	Balance      decimal.Decimal
}

// GetWalletWindowUseCase computes the current statement of a credit card wallet.
type GetWalletWindowUseCase struct {
	walletRepo      adapter.WalletRepository
	transactionRepo adapter.TransactionRepository
	clock           adapter.Clock
}

// NewGetWalletWindowUseCase creates a new GetWalletWindowUseCase instance.
func NewGetWalletWindowUseCase(
	walletRepo adapter.WalletRepository,
	transactionRepo adapter.TransactionRepository,
	clock adapter.Clock,
) *GetWalletWindowUseCase {
	return &GetWalletWindowUseCase{
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		clock:           clock,
	}
}

// Execute loads the wallet's billing configuration and totals the cycle containing the
// reference date.
func (uc *GetWalletWindowUseCase) Execute(ctx context.Context, input GetWalletWindowInput) (*GetWalletWindowOutput, error) {
	wallet, err := uc.walletRepo.FindByID(ctx, input.WalletID)
	if err != nil {
		if errors.Is(err, domainerror.ErrWalletNotFound) {
			return nil, domainerror.NewBillingCycleError(domainerror.ErrCodeWalletNotFound, "wallet not found", err)
		}
		return nil, fmt.Errorf("failed to find wallet: %w", err)
	}

	// Foreign wallets are reported as missing.
	if wallet.OwnerID != input.UserID {
		return nil, domainerror.NewBillingCycleError(
			domainerror.ErrCodeWalletNotFound,
			"wallet not found",
			domainerror.ErrWalletNotFound,
		)
	}

	cycle, ok := wallet.BillingCycle()
	if !ok {
		return nil, domainerror.NewBillingCycleError(
			domainerror.ErrCodeWalletHasNoBillingCycle,
			"wallet has no billing cycle",
			domainerror.ErrWalletHasNoBillingCycle,
		)
	}
	if err := validateCycle(cycle); err != nil {
		return nil, err
	}

	reference := uc.clock.Now()
	if input.ReferenceDate != nil {
		reference = *input.ReferenceDate
	}
	window := cycle.WindowFor(reference)

	totals, err := uc.transactionRepo.GetWalletTotals(ctx, wallet.ID, window.OpensOn, window.ClosesOn.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to total wallet statement: %w", err)
	}

	return &GetWalletWindowOutput{
		WalletID:     wallet.ID,
		Window:       toWindowOutput(window),
		ChargesTotal: totals.ExpenseTotal,
		CreditsTotal: totals.IncomeTotal,
		Balance:      totals.NetTotal,
	}, nil
}
