// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/period-engine/internal/domain/valueobject"
)

// WalletType represents the kind of payment instrument.
type WalletType string

const (
	WalletTypeCash       WalletType = "cash"
	WalletTypeChecking   WalletType = "checking"
	WalletTypeCreditCard WalletType = "credit_card"
)

// Wallet is a payment instrument. Credit-card wallets carry a billing cycle configuration.
type Wallet struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Name       string
	Type       WalletType
	ClosingDay *int
	DueDay     *int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BillingCycle returns the wallet's statement configuration, if it has one.
func (w *Wallet) BillingCycle() (valueobject.BillingCycleConfig, bool) {
	if w.Type != WalletTypeCreditCard || w.ClosingDay == nil || w.DueDay == nil {
		return valueobject.BillingCycleConfig{}, false
	}
	return valueobject.BillingCycleConfig{ClosingDay: *w.ClosingDay, DueDay: *w.DueDay}, true
}
