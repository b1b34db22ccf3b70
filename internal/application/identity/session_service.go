// Package identity carries the authenticated session through the portal:
// login, registration, the cached profile and the role-based landing page.
package identity

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nexusgg/partner-portal/internal/domain/identity"
	"github.com/nexusgg/partner-portal/internal/infrastructure/notify"
	"github.com/nexusgg/partner-portal/internal/infrastructure/session"
	"github.com/nexusgg/partner-portal/internal/platform"
	"github.com/nexusgg/partner-portal/internal/query"
)

// profileKey caches the authenticated user's profile. The role shown in the
// UI always comes from this payload, never from token claims.
var profileKey = query.NewKey("auth", "profile")

// SessionService handles login, registration, logout and the cached profile.
type SessionService struct {
	auth      *platform.AuthService
	sessions  session.Store
	cache     *query.Cache
	notifier  notify.Notifier
	staleness time.Duration
	logger    *zap.Logger
}

// NewSessionService creates the session service.
func NewSessionService(
	auth *platform.AuthService,
	sessions session.Store,
	cache *query.Cache,
	notifier notify.Notifier,
	staleness time.Duration,
	logger *zap.Logger,
) *SessionService {
	if staleness <= 0 {
		staleness = query.DefaultStaleness
	}
	return &SessionService{
		auth:      auth,
		sessions:  sessions,
		cache:     cache,
		notifier:  notifier,
		staleness: staleness,
		logger:    logger,
	}
}

// LoginResult is what the UI needs after a successful login: the user and
// the dashboard it should land on.
type LoginResult struct {
	User         *identity.User
	RedirectPath string
}

// Login authenticates against the platform, persists the session and warms
// the profile cache.
func (s *SessionService) Login(ctx context.Context, in platform.LoginInput) (*LoginResult, error) {
	res, err := s.auth.Login(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, res)
}

// Register creates an account. The platform logs the new user straight in,
// so the session is established the same way as after a login.
func (s *SessionService) Register(ctx context.Context, in platform.RegisterInput) (*LoginResult, error) {
	res, err := s.auth.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	out, err := s.establish(ctx, res)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(notify.ClassSuccess, "Welcome", "Your account has been created.")
	return out, nil
}

func (s *SessionService) establish(ctx context.Context, res *platform.AuthResult) (*LoginResult, error) {
	role := res.User.Role
	if err := s.sessions.Set(res.TokenPair(), role); err != nil {
		s.logger.Error("Failed to persist session", zap.Error(err))
		return nil, err
	}

	user := res.User
	s.cache.Invalidate(ctx, profileKey)
	s.logger.Info("Session established",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(role)),
		zap.Time("access_expiry", res.TokenPair().AccessExpiry()))

	return &LoginResult{User: &user, RedirectPath: role.DashboardPath()}, nil
}

// Logout clears the persisted session and drops the cached profile. It never
// fails towards the caller; a half-cleared session is handled on next login.
func (s *SessionService) Logout(ctx context.Context) {
	if err := s.sessions.Clear(); err != nil {
		s.logger.Warn("Failed to clear session", zap.Error(err))
	}
	s.cache.Invalidate(ctx, profileKey)
	s.logger.Info("Session cleared")
}

// Authenticated reports whether a token is currently stored.
func (s *SessionService) Authenticated() bool {
	return session.Token(s.sessions) != ""
}

// Profile returns the authenticated user's profile through the cache.
func (s *SessionService) Profile(ctx context.Context) (*identity.User, error) {
	return query.Fetch(ctx, s.cache, profileKey, s.staleness,
		func(ctx context.Context) (*identity.User, error) {
			return s.auth.GetProfile(ctx)
		})
}

// UpdateProfile applies the edit optimistically: readers see the intended
// profile while the request is in flight and fall back to the previous one
// if the platform rejects it.
func (s *SessionService) UpdateProfile(ctx context.Context, in platform.ProfileUpdate) (*identity.User, error) {
	current, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}

	projected := *current
	if in.FirstName != "" {
		projected.FirstName = in.FirstName
	}
	if in.LastName != "" {
		projected.LastName = in.LastName
	}
	if in.TelegramID != "" {
		projected.TelegramID = in.TelegramID
	}

	user, err := query.Mutate(ctx, s.cache, profileKey, s.staleness, &projected,
		func(ctx context.Context) (*identity.User, error) {
			return s.auth.UpdateProfile(ctx, in)
		})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(notify.ClassSuccess, "Profile Updated", "Your changes have been saved.")
	return user, nil
}
