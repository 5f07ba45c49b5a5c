package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/application/usecase/transaction"
)

// CreateTransactionRequest represents the request body for transaction creation.
type CreateTransactionRequest struct {
	Date        string  `json:"date" binding:"required"`
	Description string  `json:"description" binding:"required,min=1,max=255"`
	Amount      string  `json:"amount" binding:"required"`
	Type        string  `json:"type" binding:"required,oneof=expense income"`
	WalletID    *string `json:"wallet_id,omitempty"`
	CategoryID  *string `json:"category_id,omitempty"`
	Notes       string  `json:"notes,omitempty" binding:"omitempty,max=1000"`
}

// UpdateTransactionRequest represents the request body for transaction update.
type UpdateTransactionRequest struct {
	Date          *string `json:"date,omitempty"`
	Description   *string `json:"description,omitempty" binding:"omitempty,min=1,max=255"`
	Amount        *string `json:"amount,omitempty"`
	Type          *string `json:"type,omitempty" binding:"omitempty,oneof=expense income"`
	CategoryID    *string `json:"category_id,omitempty"`
	ClearCategory bool    `json:"clear_category,omitempty"`
	Notes         *string `json:"notes,omitempty" binding:"omitempty,max=1000"`
}

// TransactionResponse represents a single transaction in API responses.
type TransactionResponse struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	WalletID            *string   `json:"wallet_id,omitempty"`
	Date                string    `json:"date"`
	Description         string    `json:"description"`
	Amount              string    `json:"amount"`
	Type                string    `json:"type"`
	CategoryID          *string   `json:"category_id,omitempty"`
	Notes               string    `json:"notes"`
	IsRecurring         bool      `json:"is_recurring"`
	RecurringTemplateID *string   `json:"recurring_template_id,omitempty"`
	IsRollover          bool      `json:"is_rollover"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ToTransactionResponse converts a TransactionOutput to a TransactionResponse.
func ToTransactionResponse(output *transaction.TransactionOutput) TransactionResponse {
	return TransactionResponse{
		ID:                  output.ID.String(),
		UserID:              output.UserID.String(),
		WalletID:            uuidString(output.WalletID),
		Date:                output.Date.Format(time.DateOnly),
		Description:         output.Description,
		Amount:              output.Amount.StringFixed(2),
		Type:                string(output.Type),
		CategoryID:          uuidString(output.CategoryID),
		Notes:               output.Notes,
		IsRecurring:         output.IsRecurring,
		RecurringTemplateID: uuidString(output.RecurringTemplateID),
		IsRollover:          output.IsRollover,
		CreatedAt:           output.CreatedAt,
		UpdatedAt:           output.UpdatedAt,
	}
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
