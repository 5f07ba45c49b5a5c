package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/domain/entity"
)

// WalletModel represents the wallets table in the database.
type WalletModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(100);not null"`
	Type       string    `gorm:"type:varchar(20);not null"`
	ClosingDay *int      `gorm:"type:integer"`
	DueDay     *int      `gorm:"type:integer"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the WalletModel.
func (WalletModel) TableName() string {
	return "wallets"
}

// ToEntity converts a WalletModel to a domain Wallet entity.
func (m *WalletModel) ToEntity() *entity.Wallet {
	return &entity.Wallet{
		ID:         m.ID,
		OwnerID:    m.OwnerID,
		Name:       m.Name,
		Type:       entity.WalletType(m.Type),
		ClosingDay: m.ClosingDay,
		DueDay:     m.DueDay,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// WalletFromEntity creates a WalletModel from a domain Wallet entity.
func WalletFromEntity(wallet *entity.Wallet) *WalletModel {
	return &WalletModel{
		ID:         wallet.ID,
		OwnerID:    wallet.OwnerID,
		Name:       wallet.Name,
		Type:       string(wallet.Type),
		ClosingDay: wallet.ClosingDay,
		DueDay:     wallet.DueDay,
		CreatedAt:  wallet.CreatedAt,
		UpdatedAt:  wallet.UpdatedAt,
	}
}

// AllModels lists every model the engine migrates.
func AllModels() []interface{} {
	return []interface{}{
		&WalletModel{},
		&TransactionModel{},
		&PeriodModel{},
		&RecurringTemplateModel{},
		&RecurringOccurrenceModel{},
		&RolloverModel{},
	}
}
