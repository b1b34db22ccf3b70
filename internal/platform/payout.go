package platform

import (
	"github.com/shopspring/decimal"

	"github.com/nexusgg/partner-portal/internal/domain/shared"
)

// PayoutInput is the payout request payload shared by both partner programs.
type PayoutInput struct {
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method" validate:"required,oneof=crypto bank_transfer paypal"`
	WalletAddress string          `json:"wallet_address,omitempty"`
	Destination   string          `json:"destination,omitempty"`
}

// Validate rejects invalid payout requests before any network call is issued.
func (in PayoutInput) Validate() error {
	if !in.Amount.IsPositive() {
		return NewValidationError(shared.ErrInvalidAmount.Message)
	}
	if err := validateInput(in); err != nil {
		return err
	}
	if in.WalletAddress == "" && in.Destination == "" {
		return NewValidationError("A wallet address or destination is required")
	}
	return nil
}

// RejectPayoutInput carries the rejection reason for a payout decision.
type RejectPayoutInput struct {
	Reason string `json:"reason" validate:"required"`
}
