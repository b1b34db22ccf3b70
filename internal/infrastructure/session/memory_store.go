package session

import (
	"sync"

	"github.com/nexusgg/partner-portal/internal/domain/identity"
)

// MemoryStore is an in-memory Store used in tests and ephemeral runs.
type MemoryStore struct {
	mu    sync.RWMutex
	state State
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Set replaces the session with the given tokens and role.
func (s *MemoryStore) Set(tokens identity.TokenPair, role identity.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Tokens = tokens
	s.state.Role = role
	return nil
}

// Clear removes the session, keeping the demo wallet seed.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Tokens = identity.TokenPair{}
	s.state.Role = ""
	return nil
}

// Read returns the current session state.
func (s *MemoryStore) Read() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetWalletSeed stores the demo-only wallet seed.
func (s *MemoryStore) SetWalletSeed(seed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.TestWalletSeed = seed
	return nil
}
