package affiliate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexusgg/partner-portal/internal/domain/shared"
)

// Link is a tracked campaign link. Clicks, conversions and revenue are
// server-computed aggregates and read-only here.
type Link struct {
	ID               int64           `json:"id"`
	Slug             string          `json:"slug"`
	CampaignName     string          `json:"campaign_name"`
	TargetURL        string          `json:"target_url"`
	ShortLink        string          `json:"short_link"`
	TotalClicks      int64           `json:"total_clicks"`
	TotalConversions int64           `json:"total_conversions"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Stats is the affiliate dashboard headline snapshot.
type Stats struct {
	TotalClicks      int64           `json:"total_clicks"`
	TotalConversions int64           `json:"total_conversions"`
	ConversionRate   float64         `json:"conversion_rate"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	ActiveLinks      int             `json:"active_links"`
}

// PerformancePoint is one bucket of the performance analytics series.
type PerformancePoint struct {
	Date        shared.Date     `json:"date"`
	Clicks      int64           `json:"clicks"`
	Conversions int64           `json:"conversions"`
	Revenue     decimal.Decimal `json:"revenue"`
}
