package dto

import (
	"time"

	billingcycle "github.com/finance-tracker/period-engine/internal/application/usecase/billing_cycle"
)

// BillingWindowResponse represents a statement window in API responses.
type BillingWindowResponse struct {
	OpensOn  string `json:"opens_on"`
	ClosesOn string `json:"closes_on"`
	DueOn    string `json:"due_on"`
	Cycle    string `json:"cycle"`
}

// WalletBillingWindowResponse represents a wallet's current statement.
type WalletBillingWindowResponse struct {
	WalletID     string                `json:"wallet_id"`
	Window       BillingWindowResponse `json:"window"`
	ChargesTotal string                `json:"charges_total"`
	CreditsTotal string                `json:"credits_total"`
	Balance      string                `json:"balance"`
}

// ToBillingWindowResponse converts a WindowOutput to a BillingWindowResponse.
func ToBillingWindowResponse(output *billingcycle.WindowOutput) BillingWindowResponse {
	return BillingWindowResponse{
		OpensOn:  output.OpensOn.Format(time.DateOnly),
		ClosesOn: output.ClosesOn.Format(time.DateOnly),
		DueOn:    output.DueOn.Format(time.DateOnly),
		Cycle:    output.Cycle.String(),
	}
}

// ToWalletBillingWindowResponse converts a GetWalletWindowOutput to its response.
func ToWalletBillingWindowResponse(output *billingcycle.GetWalletWindowOutput) WalletBillingWindowResponse {
	return WalletBillingWindowResponse{
		WalletID:     output.WalletID.String(),
		Window:       ToBillingWindowResponse(output.Window),
		ChargesTotal: output.ChargesTotal.StringFixed(2),
		CreditsTotal: output.CreditsTotal.StringFixed(2),
		Balance:      output.Balance.StringFixed(2),
	}
}
