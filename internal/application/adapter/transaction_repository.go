// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/domain/entity"
)

// TransactionRepository defines the interface for transaction persistence operations.
type TransactionRepository interface {
	// Create creates a new transaction in the database.
	Create(ctx context.Context, transaction *entity.Transaction) error

	// FindByID retrieves a transaction by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)

	// Update updates an existing transaction.
	Update(ctx context.Context, transaction *entity.Transaction) error

	// Delete soft-deletes a transaction by setting deleted_at timestamp.
	Delete(ctx context.Context, id uuid.UUID) error

	// GetTotals calculates income and expense totals of a user's transactions dated
	// on or after from and before to.
	GetTotals(ctx context.Context, userID uuid.UUID, from, to time.Time) (*entity.TransactionTotals, error)

	// GetWalletTotals calculates totals of the transactions charged to a wallet dated
	// on or after from and before to.
	GetWalletTotals(ctx context.Context, walletID uuid.UUID, from, to time.Time) (*entity.TransactionTotals, error)

	// FindByRecurringTemplate retrieves the transactions generated from a template.
	FindByRecurringTemplate(ctx context.Context, templateID uuid.UUID) ([]*entity.Transaction, error)
}

// WalletRepository defines the read access the engine needs to wallets.
type WalletRepository interface {
	// FindByID retrieves a wallet by its ID. Returns ErrWalletNotFound if absent.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Wallet, error)
}
