// Package session owns the persisted client-side session state: the token
// pair, the last-known user role and the demo wallet seed. It is the only
// cross-component mutable shared state in the portal; tokens are written by
// login/register, deleted by logout and read by every outgoing request.
package session

import (
	"github.com/nexusgg/partner-portal/internal/domain/identity"
)

// State is the full persisted session snapshot.
type State struct {
	Tokens         identity.TokenPair `json:"tokens"`
	Role           identity.Role      `json:"user_role,omitempty"`
	TestWalletSeed string             `json:"test_wallet_seed,omitempty"`
}

// Store is the session store. Set, Clear and Read are the only mutation and
// access paths; nothing else may touch the persisted state.
type Store interface {
	// Set replaces the session with the given tokens and role.
	Set(tokens identity.TokenPair, role identity.Role) error
	// Clear removes the session. The demo wallet seed survives a logout.
	Clear() error
	// Read returns the current session state.
	Read() State

	// SetWalletSeed stores the demo-only wallet seed. Non-authoritative.
	SetWalletSeed(seed string) error
}

// Token returns the current access token, empty when unauthenticated.
func Token(s Store) string {
	return s.Read().Tokens.AccessToken
}
