package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexusgg/partner-portal/internal/domain/identity"
	"github.com/nexusgg/partner-portal/internal/infrastructure/notify"
	"github.com/nexusgg/partner-portal/internal/infrastructure/session"
	"github.com/nexusgg/partner-portal/internal/platform"
	"github.com/nexusgg/partner-portal/internal/query"
)

func newTestService(t *testing.T, handler http.Handler) (*SessionService, *session.MemoryStore, *notify.Recorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sessions := session.NewMemoryStore()
	recorder := notify.NewRecorder()
	client := platform.New(platform.Config{BaseURL: srv.URL}, sessions, recorder, zap.NewNop())

	cache, err := query.New(64)
	require.NoError(t, err)

	svc := NewSessionService(platform.NewAuthService(client), sessions, cache, recorder, time.Minute, zap.NewNop())
	return svc, sessions, recorder
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSessionService_LoginEstablishesSession(t *testing.T) {
	svc, sessions, recorder := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/login", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "acc-1",
			"refresh_token": "ref-1",
			"token_type":    "bearer",
			"user": map[string]any{
				"id": 7, "email": "agent@nexus.gg", "role": "AGENT", "is_active": true,
			},
		})
	}))

	res, err := svc.Login(context.Background(), platform.LoginInput{Email: "agent@nexus.gg", Password: "secret123"})
	require.NoError(t, err)

	assert.Equal(t, "/agent/dashboard", res.RedirectPath)
	require.NotNil(t, res.User)
	assert.Equal(t, int64(7), res.User.ID)
	assert.Equal(t, identity.RoleAgent, res.User.Role)

	state := sessions.Read()
	assert.Equal(t, "acc-1", state.Tokens.AccessToken)
	assert.Equal(t, "ref-1", state.Tokens.RefreshToken)
	assert.Equal(t, identity.RoleAgent, state.Role)
	assert.True(t, svc.Authenticated())
	assert.Zero(t, recorder.CountClass(notify.ClassSuccess), "a plain login is not announced")
}

func TestSessionService_LoginFailureLeavesNoSession(t *testing.T) {
	svc, sessions, recorder := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid credentials"})
	}))

	_, err := svc.Login(context.Background(), platform.LoginInput{Email: "agent@nexus.gg", Password: "wrong-pass"})
	require.Error(t, err)

	var perr *platform.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, platform.KindSessionExpired, perr.Kind)

	assert.True(t, sessions.Read().Tokens.Empty())
	assert.False(t, svc.Authenticated())
	assert.Equal(t, 1, recorder.CountClass(notify.ClassSessionExpired))
}

func TestSessionService_RegisterRedirectsByRole(t *testing.T) {
	svc, _, recorder := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/register", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "acc-2",
			"refresh_token": "ref-2",
			"token_type":    "bearer",
			"user": map[string]any{
				"id": 9, "email": "aff@nexus.gg", "role": "AFFILIATE", "is_active": true,
			},
		})
	}))

	res, err := svc.Register(context.Background(), platform.RegisterInput{
		Email:     "aff@nexus.gg",
		Password:  "secret123",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      identity.RoleAffiliate,
	})
	require.NoError(t, err)
	assert.Equal(t, "/affiliate/dashboard", res.RedirectPath)
	assert.Equal(t, 1, recorder.CountClass(notify.ClassSuccess))
}

func TestSessionService_ProfileIsCached(t *testing.T) {
	var calls atomic.Int64
	svc, sessions, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 7, "email": "agent@nexus.gg", "first_name": "Ada", "role": "AGENT", "is_active": true,
		})
	}))
	require.NoError(t, sessions.Set(identity.TokenPair{AccessToken: "acc"}, identity.RoleAgent))

	first, err := svc.Profile(context.Background())
	require.NoError(t, err)
	second, err := svc.Profile(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), calls.Load())
}

func TestSessionService_UpdateProfileCommits(t *testing.T) {
	var profileCalls atomic.Int64
	svc, sessions, recorder := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			writeJSON(w, http.StatusOK, map[string]any{
				"id": 7, "email": "agent@nexus.gg", "first_name": "Grace", "last_name": "Hopper",
				"role": "AGENT", "is_active": true,
			})
			return
		}
		profileCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 7, "email": "agent@nexus.gg", "first_name": "Ada", "last_name": "Lovelace",
			"role": "AGENT", "is_active": true,
		})
	}))
	require.NoError(t, sessions.Set(identity.TokenPair{AccessToken: "acc"}, identity.RoleAgent))

	user, err := svc.UpdateProfile(context.Background(), platform.ProfileUpdate{
		FirstName: "Grace", LastName: "Hopper",
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", user.FullName())
	assert.Equal(t, 1, recorder.CountClass(notify.ClassSuccess))
}

func TestSessionService_UpdateProfileRollsBack(t *testing.T) {
	svc, sessions, recorder := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"detail": []map[string]any{
					{"loc": []any{"body", "first_name"}, "msg": "value is too long", "type": "value_error"},
				},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 7, "email": "agent@nexus.gg", "first_name": "Ada", "last_name": "Lovelace",
			"role": "AGENT", "is_active": true,
		})
	}))
	require.NoError(t, sessions.Set(identity.TokenPair{AccessToken: "acc"}, identity.RoleAgent))

	before, err := svc.Profile(context.Background())
	require.NoError(t, err)

	_, err = svc.UpdateProfile(context.Background(), platform.ProfileUpdate{
		FirstName: "Grace", LastName: "Hopper",
	})
	require.Error(t, err)

	after, err := svc.Profile(context.Background())
	require.NoError(t, err)
	assert.Same(t, before, after, "rejected edit must restore the cached profile")
	assert.Equal(t, 1, recorder.CountClass(notify.ClassValidationError))
	assert.Zero(t, recorder.CountClass(notify.ClassSuccess))
}

func TestSessionService_LogoutClearsEverything(t *testing.T) {
	svc, sessions, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 7, "email": "agent@nexus.gg", "role": "AGENT", "is_active": true,
		})
	}))
	require.NoError(t, sessions.Set(identity.TokenPair{AccessToken: "acc"}, identity.RoleAgent))

	_, err := svc.Profile(context.Background())
	require.NoError(t, err)

	svc.Logout(context.Background())
	assert.False(t, svc.Authenticated())
	assert.True(t, sessions.Read().Tokens.Empty())
}
