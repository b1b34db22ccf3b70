package platform

import (
	"context"

	"github.com/nexusgg/partner-portal/internal/domain/identity"
)

// AuthService maps the /v1/auth endpoints to typed calls. One function per
// endpoint, no caching, no retries; failures propagate as *Error after the
// client pipeline has notified the user.
type AuthService struct {
	client *Client
}

// NewAuthService creates the auth service.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

// LoginInput are the credentials sent to the platform.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput is the registration payload. Role is assigned server-side;
// the value here is the requested partner program.
type RegisterInput struct {
	Email      string        `json:"email" validate:"required,email"`
	Password   string        `json:"password" validate:"required,min=8"`
	FirstName  string        `json:"first_name" validate:"required"`
	LastName   string        `json:"last_name" validate:"required"`
	TelegramID string        `json:"telegram_id,omitempty"`
	Role       identity.Role `json:"role" validate:"required,oneof=AGENT AFFILIATE"`
}

// AuthResult is the token-and-profile payload returned by login and register.
type AuthResult struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	User         identity.User `json:"user"`
}

// TokenPair extracts the session token pair from the result.
func (r AuthResult) TokenPair() identity.TokenPair {
	return identity.TokenPair{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
	}
}

// Login authenticates with email and password.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var out AuthResult
	if err := s.client.Post(ctx, "/v1/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a partner account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var out AuthResult
	if err := s.client.Post(ctx, "/v1/auth/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProfileUpdate is the mutable slice of the profile.
type ProfileUpdate struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	TelegramID string `json:"telegram_id,omitempty"`
}

// GetProfile fetches the authenticated profile.
func (s *AuthService) GetProfile(ctx context.Context) (*identity.User, error) {
	var out identity.User
	if err := s.client.Get(ctx, "/v1/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile replaces the mutable profile fields and returns the server's
// authoritative value.
func (s *AuthService) UpdateProfile(ctx context.Context, in ProfileUpdate) (*identity.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var out identity.User
	if err := s.client.Put(ctx, "/v1/auth/profile", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
