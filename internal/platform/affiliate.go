package platform

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nexusgg/partner-portal/internal/domain/affiliate"
	"github.com/nexusgg/partner-portal/internal/domain/wallet"
)

// AffiliateService maps the /v1/affiliate endpoints to typed calls.
type AffiliateService struct {
	client *Client
}

// NewAffiliateService creates the affiliate service.
func NewAffiliateService(client *Client) *AffiliateService {
	return &AffiliateService{client: client}
}

// GetStats fetches the affiliate dashboard headline numbers.
func (s *AffiliateService) GetStats(ctx context.Context) (*affiliate.Stats, error) {
	var out affiliate.Stats
	if err := s.client.Get(ctx, "/v1/affiliate/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPerformance fetches the performance series for the given period.
func (s *AffiliateService) GetPerformance(ctx context.Context, period string) ([]affiliate.PerformancePoint, error) {
	q := url.Values{"period": {period}}
	var out []affiliate.PerformancePoint
	if err := s.client.Get(ctx, "/v1/affiliate/analytics/performance", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateLinkInput is the link generator payload.
type CreateLinkInput struct {
	TargetURL    string `json:"target_url" validate:"required,url"`
	CampaignName string `json:"campaign_name" validate:"required"`
}

// CreateLink generates a tracked short link (https://nxs.gg/a/<slug>). The
// new link appears in the list with zeroed aggregates.
func (s *AffiliateService) CreateLink(ctx context.Context, in CreateLinkInput) (*affiliate.Link, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var out affiliate.Link
	if err := s.client.Post(ctx, "/v1/affiliate/links", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListLinks fetches all of the affiliate's links.
func (s *AffiliateService) ListLinks(ctx context.Context) ([]affiliate.Link, error) {
	var out []affiliate.Link
	if err := s.client.Get(ctx, "/v1/affiliate/links", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteLink removes a link. Its aggregates are gone with it.
func (s *AffiliateService) DeleteLink(ctx context.Context, linkID int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/v1/affiliate/links/%d", linkID))
}

// GetWallet fetches the affiliate wallet snapshot.
func (s *AffiliateService) GetWallet(ctx context.Context) (*wallet.Balance, error) {
	var out wallet.Balance
	if err := s.client.Get(ctx, "/v1/affiliate/wallet", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestPayout submits a payout request. Invalid amounts are rejected here,
// before any network call.
func (s *AffiliateService) RequestPayout(ctx context.Context, in PayoutInput) (*wallet.PayoutRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var out wallet.PayoutRequest
	if err := s.client.Post(ctx, "/v1/affiliate/payouts", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PayoutHistory fetches the affiliate's payout requests, newest first.
func (s *AffiliateService) PayoutHistory(ctx context.Context) ([]wallet.PayoutRequest, error) {
	var out []wallet.PayoutRequest
	if err := s.client.Get(ctx, "/v1/affiliate/payouts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApprovePayout resolves a pending payout as approved.
func (s *AffiliateService) ApprovePayout(ctx context.Context, payoutID int64) (*wallet.PayoutRequest, error) {
	var out wallet.PayoutRequest
	path := fmt.Sprintf("/v1/affiliate/payouts/%d/approve", payoutID)
	if err := s.client.Post(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RejectPayout resolves a pending payout as rejected.
func (s *AffiliateService) RejectPayout(ctx context.Context, payoutID int64, in RejectPayoutInput) (*wallet.PayoutRequest, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var out wallet.PayoutRequest
	path := fmt.Sprintf("/v1/affiliate/payouts/%d/reject", payoutID)
	if err := s.client.Post(ctx, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SeedCampaignData asks the platform to seed demo campaign data. Demo
// environments only.
func (s *AffiliateService) SeedCampaignData(ctx context.Context) error {
	return s.client.Post(ctx, "/v1/affiliate/demo/seed", nil, nil)
}
