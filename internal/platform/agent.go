package platform

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nexusgg/partner-portal/internal/domain/agent"
	"github.com/nexusgg/partner-portal/internal/domain/shared"
	"github.com/nexusgg/partner-portal/internal/domain/wallet"
)

// AgentService maps the /v1/agent endpoints to typed calls.
type AgentService struct {
	client *Client
}

// NewAgentService creates the agent service.
func NewAgentService(client *Client) *AgentService {
	return &AgentService{client: client}
}

// GetStats fetches the agent dashboard headline numbers.
func (s *AgentService) GetStats(ctx context.Context) (*agent.Stats, error) {
	var out agent.Stats
	if err := s.client.Get(ctx, "/v1/agent/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRevenueAnalytics fetches the revenue series for the given period
// ("7d", "30d", "90d").
func (s *AgentService) GetRevenueAnalytics(ctx context.Context, period string) ([]agent.RevenuePoint, error) {
	q := url.Values{"period": {period}}
	var out []agent.RevenuePoint
	if err := s.client.Get(ctx, "/v1/agent/analytics/revenue", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetWallet fetches the agent wallet snapshot.
func (s *AgentService) GetWallet(ctx context.Context) (*wallet.Balance, error) {
	var out wallet.Balance
	if err := s.client.Get(ctx, "/v1/agent/wallet", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserList is one page of managed users.
type UserList struct {
	Items []agent.ManagedUser `json:"items"`
	Meta  shared.PageMeta     `json:"meta"`
}

// ListUsers fetches one page of the users managed by the agent.
func (s *AgentService) ListUsers(ctx context.Context, page shared.Page) (*UserList, error) {
	page = page.Normalize()
	q := url.Values{
		"page":      {strconv.Itoa(page.Number)},
		"page_size": {strconv.Itoa(page.Size)},
	}
	var out UserList
	if err := s.client.Get(ctx, "/v1/agent/users", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddUserInput creates a player under the agent.
type AddUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}

// AddUser creates a player under the agent.
func (s *AgentService) AddUser(ctx context.Context, in AddUserInput) (*agent.ManagedUser, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var out agent.ManagedUser
	if err := s.client.Post(ctx, "/v1/agent/users", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleUser flips a managed user's active flag and returns the new state.
func (s *AgentService) ToggleUser(ctx context.Context, userID int64) (*agent.ManagedUser, error) {
	var out agent.ManagedUser
	path := fmt.Sprintf("/v1/agent/users/%d/toggle", userID)
	if err := s.client.Post(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CommissionList is one page of commission records.
type CommissionList struct {
	Items []agent.Commission `json:"items"`
	Meta  shared.PageMeta    `json:"meta"`
}

// ListCommissions fetches one page of the agent's commissions.
func (s *AgentService) ListCommissions(ctx context.Context, page shared.Page) (*CommissionList, error) {
	page = page.Normalize()
	q := url.Values{
		"page":      {strconv.Itoa(page.Number)},
		"page_size": {strconv.Itoa(page.Size)},
	}
	var out CommissionList
	if err := s.client.Get(ctx, "/v1/agent/commissions", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportCommissionsCSV downloads the commission history as CSV.
func (s *AgentService) ExportCommissionsCSV(ctx context.Context) ([]byte, error) {
	return s.client.GetRaw(ctx, "/v1/agent/commissions/export", url.Values{"format": {"csv"}})
}

// RequestPayout submits a payout request. Invalid amounts are rejected here,
// before any network call.
func (s *AgentService) RequestPayout(ctx context.Context, in PayoutInput) (*wallet.PayoutRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var out wallet.PayoutRequest
	if err := s.client.Post(ctx, "/v1/agent/payouts", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PayoutHistory fetches the agent's payout requests, newest first.
func (s *AgentService) PayoutHistory(ctx context.Context) ([]wallet.PayoutRequest, error) {
	var out []wallet.PayoutRequest
	if err := s.client.Get(ctx, "/v1/agent/payouts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApprovePayout resolves a pending payout as approved.
func (s *AgentService) ApprovePayout(ctx context.Context, payoutID int64) (*wallet.PayoutRequest, error) {
	var out wallet.PayoutRequest
	path := fmt.Sprintf("/v1/agent/payouts/%d/approve", payoutID)
	if err := s.client.Post(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RejectPayout resolves a pending payout as rejected.
func (s *AgentService) RejectPayout(ctx context.Context, payoutID int64, in RejectPayoutInput) (*wallet.PayoutRequest, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var out wallet.PayoutRequest
	path := fmt.Sprintf("/v1/agent/payouts/%d/reject", payoutID)
	if err := s.client.Post(ctx, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SeedWallet asks the platform to seed the demo wallet. Demo environments
// only; the seeded balance is non-authoritative.
func (s *AgentService) SeedWallet(ctx context.Context, seed string) (*wallet.Balance, error) {
	body := map[string]string{"seed": seed}
	var out wallet.Balance
	if err := s.client.Post(ctx, "/v1/agent/wallet/seed", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
