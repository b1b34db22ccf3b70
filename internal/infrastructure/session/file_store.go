package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/nexusgg/partner-portal/internal/domain/identity"
)

// FileStore persists the session as a JSON file, the portal's analog of
// browser-local storage. Mutation only happens at session boundaries
// (login, logout), so a single mutex is enough.
type FileStore struct {
	path   string
	logger *zap.Logger

	mu    sync.RWMutex
	state State
}

// NewFileStore opens (or initializes) the session file at path.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		logger: logger.With(zap.String("component", "session_store")),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run, start with an empty session
	case err != nil:
		return nil, fmt.Errorf("reading session file: %w", err)
	default:
		if err := json.Unmarshal(data, &s.state); err != nil {
			// A corrupt session file is recoverable by re-authenticating
			s.logger.Warn("Discarding unreadable session file", zap.Error(err))
			s.state = State{}
		}
	}

	return s, nil
}

// Set replaces the session with the given tokens and role.
func (s *FileStore) Set(tokens identity.TokenPair, role identity.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Tokens = tokens
	s.state.Role = role
	return s.persist()
}

// Clear removes the session, keeping the demo wallet seed.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Tokens = identity.TokenPair{}
	s.state.Role = ""
	return s.persist()
}

// Read returns the current session state.
func (s *FileStore) Read() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetWalletSeed stores the demo-only wallet seed.
func (s *FileStore) SetWalletSeed(seed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.TestWalletSeed = seed
	return s.persist()
}

// persist writes the state atomically; callers must hold the write lock.
func (s *FileStore) persist() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing session file: %w", err)
	}
	return nil
}

// DefaultPath returns the session file location under the user config dir,
// falling back to the working directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".portal-session.json"
	}
	return filepath.Join(dir, "partner-portal", "session.json")
}
