// Package transaction contains the guarded ledger write use cases.
package transaction

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/period-engine/internal/domain/entity"
	domainerror "github.com/finance-tracker/period-engine/internal/domain/error"
)

const (
	// MaxDescriptionLength is the maximum allowed length for transaction descriptions.
	MaxDescriptionLength = 255
	// MaxNotesLength is the maximum allowed length for transaction notes.
	MaxNotesLength = 1000
)

// TransactionOutput represents a ledger transaction in use case results.
type TransactionOutput struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	WalletID            *uuid.UUID
	Date                time.Time
	Description         string
	Amount              decimal.Decimal
	Type                entity.TransactionType
	CategoryID          *uuid.UUID
	Notes               string
	IsRecurring         bool
	RecurringTemplateID *uuid.UUID
	IsRollover          bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ToTransactionOutput converts a transaction entity to its output form.
func ToTransactionOutput(transaction *entity.Transaction) *TransactionOutput {
	return &TransactionOutput{
		ID:                  transaction.ID,
		UserID:              transaction.UserID,
		WalletID:            transaction.WalletID,
		Date:                transaction.Date,
		Description:         transaction.Description,
		Amount:              transaction.Amount,
		Type:                transaction.Type,
		CategoryID:          transaction.CategoryID,
		Notes:               transaction.Notes,
		IsRecurring:         transaction.IsRecurring,
		RecurringTemplateID: transaction.RecurringTemplateID,
		IsRollover:          transaction.IsRollover,
		CreatedAt:           transaction.CreatedAt,
		UpdatedAt:           transaction.UpdatedAt,
	}
}

// signedAmount stores expenses as negative and income as positive amounts.
func signedAmount(amount decimal.Decimal, transactionType entity.TransactionType) decimal.Decimal {
	if transactionType == entity.TransactionTypeExpense {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}

// calendarDate truncates a timestamp to its UTC calendar day.
func calendarDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func validateText(description, notes string) error {
	if len(description) > MaxDescriptionLength {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeDescriptionTooLong,
			fmt.Sprintf("description must not exceed %d characters", MaxDescriptionLength),
			domainerror.ErrDescriptionTooLong,
		)
	}
	if len(notes) > MaxNotesLength {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeNotesTooLong,
			fmt.Sprintf("notes must not exceed %d characters", MaxNotesLength),
			domainerror.ErrNotesTooLong,
		)
	}
	return nil
}
