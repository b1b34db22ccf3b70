// Package agent serves the agent dashboard: referred-player management,
// commission tracking and the commission wallet with its payout workflow.
package agent

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/nexusgg/partner-portal/internal/domain/agent"
	"github.com/nexusgg/partner-portal/internal/domain/shared"
	"github.com/nexusgg/partner-portal/internal/domain/wallet"
	"github.com/nexusgg/partner-portal/internal/infrastructure/notify"
	"github.com/nexusgg/partner-portal/internal/platform"
	"github.com/nexusgg/partner-portal/internal/query"
)

var (
	statsKey    = query.NewKey("agent", "stats")
	walletKey   = query.NewKey("agent", "wallet")
	payoutsKey  = query.NewKey("agent", "payouts")
	usersPrefix = query.NewKey("agent", "users")
)

func revenueKey(period string) query.Key {
	return query.NewKey("agent", "revenue", period)
}

func usersKey(page shared.Page) query.Key {
	return query.NewKey("agent", "users", strconv.Itoa(page.Number), strconv.Itoa(page.Size))
}

func commissionsKey(page shared.Page) query.Key {
	return query.NewKey("agent", "commissions", strconv.Itoa(page.Number), strconv.Itoa(page.Size))
}

// PortalService binds the agent platform endpoints to the query cache.
type PortalService struct {
	api       *platform.AgentService
	cache     *query.Cache
	notifier  notify.Notifier
	staleness query.Staleness
	logger    *zap.Logger
}

// NewPortalService creates the agent portal service.
func NewPortalService(
	api *platform.AgentService,
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
func (s *PortalService) Stats(ctx context.Context) (*agent.Stats, error) {
	return query.Fetch(ctx, s.cache, statsKey, s.staleness.Default,
		func(ctx context.Context) (*agent.Stats, error) {
			return s.api.GetStats(ctx)
		})
}

// RevenueAnalytics returns the revenue series for a chart period such as
// "7d" or "30d". Each period caches independently.
func (s *PortalService) RevenueAnalytics(ctx context.Context, period string) ([]agent.RevenuePoint, error) {
	return query.Fetch(ctx, s.cache, revenueKey(period), s.staleness.Default,
		func(ctx context.Context) ([]agent.RevenuePoint, error) {
			return s.api.GetRevenueAnalytics(ctx, period)
		})
}

// Wallet returns the commission wallet balance.
func (s *PortalService) Wallet(ctx context.Context) (*wallet.Balance, error) {
	return query.Fetch(ctx, s.cache, walletKey, s.staleness.Wallet,
		func(ctx context.Context) (*wallet.Balance, error) {
			return s.api.GetWallet(ctx)
		})
}

// Users returns one page of referred players.
func (s *PortalService) Users(ctx context.Context, page shared.Page) (*platform.UserList, error) {
	page = page.Normalize()
	return query.Fetch(ctx, s.cache, usersKey(page), s.staleness.Default,
		func(ctx context.Context) (*platform.UserList, error) {
			return s.api.ListUsers(ctx, page)
		})
}

// AddUser registers a player under this agent. Every cached user page is
// invalidated because the new row may land on any of them.
func (s *PortalService) AddUser(ctx context.Context, in platform.AddUserInput) (*agent.ManagedUser, error) {
	defer func() {
		s.cache.InvalidatePrefix(ctx, usersPrefix)
		s.cache.Invalidate(ctx, statsKey)
	}()
	u, err := s.api.AddUser(ctx, in)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(notify.ClassSuccess, "User Added", u.Email+" is now under your management.")
	return u, nil
}

// ToggleUser flips a player's active flag.
func (s *PortalService) ToggleUser(ctx context.Context, userID int64) (*agent.ManagedUser, error) {
	defer s.cache.InvalidatePrefix(ctx, usersPrefix)
	u, err := s.api.ToggleUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	state := "deactivated"
	if u.IsActive {
		state = "activated"
	}
	s.notifier.Notify(notify.ClassSuccess, "User Updated", u.Email+" has been "+state+".")
	return u, nil
}

// Commissions returns one page of the commission ledger.
func (s *PortalService) Commissions(ctx context.Context, page shared.Page) (*platform.CommissionList, error) {
	page = page.Normalize()
	return query.Fetch(ctx, s.cache, commissionsKey(page), s.staleness.Default,
		func(ctx context.Context) (*platform.CommissionList, error) {
			return s.api.ListCommissions(ctx, page)
		})
}

// ExportCommissionsCSV streams the full ledger export. Exports are not
// cached; the file must reflect the ledger at the moment of the click.
func (s *PortalService) ExportCommissionsCSV(ctx context.Context) ([]byte, error) {
	return s.api.ExportCommissionsCSV(ctx)
}

// RequestPayout submits a withdrawal from the commission wallet. The wallet
// and payout history refetch once the platform has settled the request.
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

// SeedWallet loads demo funds into the commission wallet.
func (s *PortalService) SeedWallet(ctx context.Context, seed string) (*wallet.Balance, error) {
	b, err := query.MutateInvalidate(ctx, s.cache, []query.Key{walletKey, statsKey},
		func(ctx context.Context) (*wallet.Balance, error) {
			return s.api.SeedWallet(ctx, seed)
		})
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(notify.ClassSuccess, "Wallet Seeded", "Demo funds have been credited.")
	return b, nil
}
