// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finance-tracker/period-engine/internal/domain/entity"
)

// TransactionModel represents the transactions table in the database.
type TransactionModel struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID              uuid.UUID       `gorm:"type:uuid;not null;index:idx_transactions_user_date,priority:1"`
	WalletID            *uuid.UUID      `gorm:"type:uuid;index"`
	Date                time.Time       `gorm:"type:date;not null;index:idx_transactions_user_date,priority:2"`
	Description         string          `gorm:"type:varchar(255);not null"`
	Amount              decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Type                string          `gorm:"type:varchar(10);not null;index"`
	CategoryID          *uuid.UUID      `gorm:"type:uuid;index"`
	Notes               string          `gorm:"type:text"`
	IsRecurring         bool            `gorm:"default:false"`
	RecurringTemplateID *uuid.UUID      `gorm:"type:uuid;index"`
	IsRollover          bool            `gorm:"default:false"`
	CreatedAt           time.Time       `gorm:"not null"`
	UpdatedAt           time.Time       `gorm:"not null"`
	DeletedAt           gorm.DeletedAt  `gorm:"index"` // Soft-delete support
}

// TableName returns the table name for the TransactionModel.
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToEntity converts a TransactionModel to a domain Transaction entity.
func (m *TransactionModel) ToEntity() *entity.Transaction {
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		deletedAt = &m.DeletedAt.Time
	}

	return &entity.Transaction{
		ID:                  m.ID,
		UserID:              m.UserID,
		WalletID:            m.WalletID,
		Date:                m.Date,
		Description:         m.Description,
		Amount:              m.Amount,
		Type:                entity.TransactionType(m.Type),
		CategoryID:          m.CategoryID,
		Notes:               m.Notes,
		IsRecurring:         m.IsRecurring,
		RecurringTemplateID: m.RecurringTemplateID,
		IsRollover:          m.IsRollover,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
		DeletedAt:           deletedAt,
	}
}

// TransactionFromEntity creates a TransactionModel from a domain Transaction entity.
func TransactionFromEntity(transaction *entity.Transaction) *TransactionModel {
	var deletedAt gorm.DeletedAt
	if transaction.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *transaction.DeletedAt, Valid: true}
	}

	return &TransactionModel{
		ID:                  transaction.ID,
		UserID:              transaction.UserID,
		WalletID:            transaction.WalletID,
		Date:                transaction.Date,
		Description:         transaction.Description,
		Amount:              transaction.Amount,
		Type:                string(transaction.Type),
		CategoryID:          transaction.CategoryID,
		Notes:               transaction.Notes,
		IsRecurring:         transaction.IsRecurring,
		RecurringTemplateID: transaction.RecurringTemplateID,
		IsRollover:          transaction.IsRollover,
		CreatedAt:           transaction.CreatedAt,
		UpdatedAt:           transaction.UpdatedAt,
		DeletedAt:           deletedAt,
	}
}
