// Package affiliate serves the affiliate dashboard: tracking links, click
// and conversion performance, and the affiliate wallet.
package affiliate

import (
	"context"

	"go.uber.org/zap"

	"github.com/nexusgg/partner-portal/internal/domain/affiliate"
	"github.com/nexusgg/partner-portal/internal/domain/wallet"
	"github.com/nexusgg/partner-portal/internal/infrastructure/notify"
	"github.com/nexusgg/partner-portal/internal/platform"
	"github.com/nexusgg/partner-portal/internal/query"
)

var (
	statsKey          = query.NewKey("affiliate", "stats")
	linksKey          = query.NewKey("affiliate", "links")
	walletKey         = query.NewKey("affiliate", "wallet")
	payoutsKey        = query.NewKey("affiliate", "payouts")
	performancePrefix = query.NewKey("affiliate", "performance")
)

func performanceKey(period string) query.Key {
	return query.NewKey("affiliate", "performance", period)
}

// PortalService binds the affiliate platform endpoints to the query cache.
type PortalService struct {
	api       *platform.AffiliateService
	cache     *query.Cache
	notifier  notify.Notifier
	staleness query.Staleness
	logger    *zap.Logger
}

// NewPortalService creates the affiliate portal service.
func NewPortalService(
	api *platform.AffiliateService,
	cache *query.Cache,
	notifier notify.Notifier,
	staleness query.Staleness,
	logger *zap.Logger,
) *PortalService {
	staleness.Normalize()
	return &PortalService{
		api:       api,
		cache:     cache,
		notifier:  notifier,
		staleness: staleness,
		logger:    logger,
	}
}

// Stats returns the dashboard headline numbers.
func (s *PortalService) Stats(ctx context.Context) (*affiliate.Stats, error) {
	return query.Fetch(ctx, s.cache, statsKey, s.staleness.Default,
		func(ctx context.Context) (*affiliate.Stats, error) {
			return s.api.GetStats(ctx)
		})
}

// Performance returns the click and conversion series for a chart period.
func (s *PortalService) Performance(ctx context.Context, period string) ([]affiliate.PerformancePoint, error) {
	return query.Fetch(ctx, s.cache, performanceKey(period), s.staleness.Default,
		func(ctx context.Context) ([]affiliate.PerformancePoint, error) {
			return s.api.GetPerformance(ctx, period)
		})
}

// Links returns the affiliate's tracking links.
func (s *PortalService) Links(ctx context.Context) ([]affiliate.Link, error) {
	return query.Fetch(ctx, s.cache, linksKey, s.staleness.Default,
		func(ctx context.Context) ([]affiliate.Link, error) {
			return s.api.ListLinks(ctx)
		})
}

// CreateLink mints a tracking link for a campaign. The link list and the
// stats refetch once the platform has assigned the short link.
func (s *PortalService) CreateLink(ctx context.Context, in platform.CreateLinkInput) (*affiliate.Link, error) {
	l, err := query.MutateInvalidate(ctx, s.cache, []query.Key{linksKey, statsKey},
		func(ctx context.Context) (*affiliate.Link, error) {
			return s.api.CreateLink(ctx, in)
		})
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(notify.ClassSuccess, "Link Created",
		"Your tracking link "+l.ShortLink+" is ready to share.")
	return l, nil
}

// DeleteLink removes a tracking link. Historical clicks and conversions stay
// attributed upstream; only the link stops resolving.
func (s *PortalService) DeleteLink(ctx context.Context, linkID int64) error {
	_, err := query.MutateInvalidate(ctx, s.cache, []query.Key{linksKey, statsKey},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.DeleteLink(ctx, linkID)
		})
	if err != nil {
		return err
	}
	s.notifier.Notify(notify.ClassSuccess, "Link Deleted", "The tracking link has been removed.")
	return nil
}

// Wallet returns the affiliate wallet balance.
func (s *PortalService) Wallet(ctx context.Context) (*wallet.Balance, error) {
	return query.Fetch(ctx, s.cache, walletKey, s.staleness.Wallet,
		func(ctx context.Context) (*wallet.Balance, error) {
			return s.api.GetWallet(ctx)
		})
}

// RequestPayout submits a withdrawal from the affiliate wallet.
func (s *PortalService) RequestPayout(ctx context.Context, in platform.PayoutInput) (*wallet.PayoutRequest, error) {
	p, err := query.MutateInvalidate(ctx, s.cache, []query.Key{walletKey, payoutsKey},
		func(ctx context.Context) (*wallet.PayoutRequest, error) {
			return s.api.RequestPayout(ctx, in)
		})
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(notify.ClassSuccess, "Payout Requested",
		"Your payout request for "+p.Amount.StringFixed(2)+" has been submitted.")
	return p, nil
}

// Payouts returns the payout request history.
func (s *PortalService) Payouts(ctx context.Context) ([]wallet.PayoutRequest, error) {
	return query.Fetch(ctx, s.cache, payoutsKey, s.staleness.Wallet,
		func(ctx context.Context) ([]wallet.PayoutRequest, error) {
			return s.api.PayoutHistory(ctx)
		})
}

// ApprovePayout approves a pending payout request.
func (s *PortalService) ApprovePayout(ctx context.Context, payoutID int64) (*wallet.PayoutRequest, error) {
	p, err := query.MutateInvalidate(ctx, s.cache, []query.Key{walletKey, payoutsKey},
		func(ctx context.Context) (*wallet.PayoutRequest, error) {
			return s.api.ApprovePayout(ctx, payoutID)
		})
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(notify.ClassSuccess, "Payout Approved", "The payout request has been approved.")
	return p, nil
}

// RejectPayout rejects a pending payout request with a reason.
func (s *PortalService) RejectPayout(ctx context.Context, payoutID int64, in platform.RejectPayoutInput) (*wallet.PayoutRequest, error) {
	p, err := query.MutateInvalidate(ctx, s.cache, []query.Key{walletKey, payoutsKey},
		func(ctx context.Context) (*wallet.PayoutRequest, error) {
			return s.api.RejectPayout(ctx, payoutID, in)
		})
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(notify.ClassInfo, "Payout Rejected", "The payout request has been rejected.")
	return p, nil
}

// SeedCampaignData loads demo clicks and conversions for this affiliate.
func (s *PortalService) SeedCampaignData(ctx context.Context) error {
	defer func() {
		s.cache.InvalidatePrefix(ctx, performancePrefix)
		s.cache.Invalidate(ctx, statsKey, linksKey)
	}()
	if err := s.api.SeedCampaignData(ctx); err != nil {
		return err
	}
	s.notifier.Notify(notify.ClassSuccess, "Demo Data Seeded", "Campaign activity has been generated.")
	return nil
}
