package agent

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexusgg/partner-portal/internal/domain/shared"
)

// Stats is the agent dashboard headline snapshot.
type Stats struct {
	TotalUsers      int64           `json:"total_users"`
	ActiveUsers     int64           `json:"active_users"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalCommission decimal.Decimal `json:"total_commission"`
}

// RevenuePoint is one bucket of the revenue analytics series.
type RevenuePoint struct {
	Date       shared.Date     `json:"date"`
	Revenue    decimal.Decimal `json:"revenue"`
	Commission decimal.Decimal `json:"commission"`
	Wagered    decimal.Decimal `json:"wagered"`
}

// ManagedUser is a player managed by the agent.
type ManagedUser struct {
	ID           int64           `json:"id"`
	Email        string          `json:"email"`
	Username     string          `json:"username"`
	IsActive     bool            `json:"is_active"`
	TotalWagered decimal.Decimal `json:"total_wagered"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Commission is one commission record attributed to the agent.
type Commission struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	UserEmail string          `json:"user_email"`
	Amount    decimal.Decimal `json:"amount"`
	Rate      decimal.Decimal `json:"rate"`
	Period    string          `json:"period"`
	CreatedAt time.Time       `json:"created_at"`
}
