// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction (expense or income).
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeIncome  TransactionType = "income"
)

// IsValid reports whether the transaction type is expense or income.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeExpense || t == TransactionTypeIncome
}

// Transaction represents a financial transaction in the Finance Tracker ledger.
type Transaction struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	WalletID            *uuid.UUID
	Date                time.Time
	Description         string
	Amount              decimal.Decimal // Negative for expenses, positive for income
	Type                TransactionType
	CategoryID          *uuid.UUID // Optional, can be uncategorized
	Notes               string
	IsRecurring         bool
	RecurringTemplateID *uuid.UUID // Set when generated from a recurring template
	IsRollover          bool       // Carry-forward adjustment from a closed period
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time // Soft-delete support
}

// NewTransaction creates a new Transaction entity.
func NewTransaction(
	userID uuid.UUID,
	walletID *uuid.UUID,
	date time.Time,
	description string,
	amount decimal.Decimal,
	transactionType TransactionType,
	categoryID *uuid.UUID,
	notes string,
) *Transaction {
	now := time.Now().UTC()

	return &Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		WalletID:    walletID,
		Date:        date,
		Description: description,
		Amount:      amount,
		Type:        transactionType,
		CategoryID:  categoryID,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TransactionTotals represents aggregated totals for transactions.
type TransactionTotals struct {
	IncomeTotal  decimal.Decimal
	ExpenseTotal decimal.Decimal
	NetTotal     decimal.Decimal
}
