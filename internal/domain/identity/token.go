package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPair holds the session tokens issued by the platform on login or
// register. Absence of the access token means requests go out unauthenticated.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Empty reports whether no access token is held.
func (t TokenPair) Empty() bool {
	return t.AccessToken == ""
}

// AccessExpiry peeks at the access token's exp claim without verifying the
// signature. The platform is the authority on token validity; this is only
// used for display and log context. Returns the zero time when the token is
// absent or carries no expiry.
func (t TokenPair) AccessExpiry() time.Time {
	if t.AccessToken == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(t.AccessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
