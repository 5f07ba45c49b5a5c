package transaction

import (
	"context"
	"fmt"

	"github.com/finance-tracker/period-engine/internal/application/adapter"
	"github.com/finance-tracker/period-engine/internal/domain/entity"
)

// LedgerWriter creates ledger transactions after checking the period lock. It joins the
// transaction carried by ctx, so callers run it inside a UnitOfWork to hold the period
// lock until commit.
type LedgerWriter struct {
	guard           adapter.PeriodGuard
	transactionRepo adapter.TransactionRepository
}

var _ adapter.TransactionCreator = (*LedgerWriter)(nil)

// NewLedgerWriter creates a new LedgerWriter instance.
func NewLedgerWriter(guard adapter.PeriodGuard, transactionRepo adapter.TransactionRepository) *LedgerWriter {
	return &LedgerWriter{
		guard:           guard,
		transactionRepo: transactionRepo,
	}
}

// CreateTransaction stores the transaction unless its period is closed.
func (w *LedgerWriter) CreateTransaction(ctx context.Context, transaction *entity.Transaction) (*entity.Transaction, error) {
	if err := w.guard.AssertWritable(ctx, transaction.UserID, transaction.Date); err != nil {
		return nil, err
	}

	if err := w.transactionRepo.Create(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return transaction, nil
}
