package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is a read-mostly snapshot of a partner wallet. It is mutated only
// indirectly, through payout requests resolved upstream.
type Balance struct {
	CommissionBalance decimal.Decimal `json:"commission_balance"`
	PendingCommission decimal.Decimal `json:"pending_commission"`
	TotalWithdrawn    decimal.Decimal `json:"total_withdrawn"`
	TotalEarned       decimal.Decimal `json:"total_earned"`
	Currency          string          `json:"currency"`
}

// PayoutStatus is the finite payout lifecycle. PENDING resolves to exactly one
// of APPROVED, COMPLETED or REJECTED and is terminal afterwards.
type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "PENDING"
	PayoutStatusApproved  PayoutStatus = "APPROVED"
	PayoutStatusCompleted PayoutStatus = "COMPLETED"
	PayoutStatusRejected  PayoutStatus = "REJECTED"
)

// Terminal reports whether the status can no longer change.
func (s PayoutStatus) Terminal() bool {
	switch s {
	case PayoutStatusApproved, PayoutStatusCompleted, PayoutStatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether a payout may move from s to next.
func (s PayoutStatus) CanTransition(next PayoutStatus) bool {
	if s != PayoutStatusPending {
		return false
	}
	switch next {
	case PayoutStatusApproved, PayoutStatusCompleted, PayoutStatusRejected:
		return true
	}
	return false
}

// PayoutRequest mirrors a payout as reported by the platform.
type PayoutRequest struct {
	ID              int64           `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method"`
	WalletAddress   string          `json:"wallet_address,omitempty"`
	Destination     string          `json:"destination,omitempty"`
	Status          PayoutStatus    `json:"status"`
	RequestedAt     time.Time       `json:"requested_at"`
	ProcessedAt     *time.Time      `json:"processed_at,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
}
