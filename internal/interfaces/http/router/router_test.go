package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appaffiliate "github.com/nexusgg/partner-portal/internal/application/affiliate"
	appagent "github.com/nexusgg/partner-portal/internal/application/agent"
	appidentity "github.com/nexusgg/partner-portal/internal/application/identity"
	"github.com/nexusgg/partner-portal/internal/domain/identity"
	"github.com/nexusgg/partner-portal/internal/infrastructure/config"
	"github.com/nexusgg/partner-portal/internal/infrastructure/notify"
	"github.com/nexusgg/partner-portal/internal/infrastructure/session"
	"github.com/nexusgg/partner-portal/internal/interfaces/http/handler"
	"github.com/nexusgg/partner-portal/internal/platform"
	"github.com/nexusgg/partner-portal/internal/query"
)

func newTestRouter(t *testing.T, cfg *config.Config, upstream http.Handler) (http.Handler, *session.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	sessions := session.NewMemoryStore()
	client := platform.New(platform.Config{BaseURL: srv.URL}, sessions, notify.Nop(), zap.NewNop())

	cache, err := query.New(64)
	require.NoError(t, err)

	staleness := query.Staleness{Default: time.Minute, Wallet: time.Minute}
	log := zap.NewNop()

	sessionSvc := appidentity.NewSessionService(platform.NewAuthService(client), sessions, cache, notify.Nop(), time.Minute, log)
	agentSvc := appagent.NewPortalService(platform.NewAgentService(client), cache, notify.Nop(), staleness, log)
	affiliateSvc := appaffiliate.NewPortalService(platform.NewAffiliateService(client), cache, notify.Nop(), staleness, log)

	h := Handlers{
		Auth:      handler.NewAuthHandler(sessionSvc, log),
		Agent:     handler.NewAgentHandler(agentSvc, log),
		Affiliate: handler.NewAffiliateHandler(affiliateSvc, log),
		Health:    handler.NewHealthHandler("test"),
	}
	return New(cfg, sessions, h, log), sessions
}

func testConfig() *config.Config {
	return &config.Config{}
}

func upstreamOK() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{})
	})
}

func TestRouter_HealthIsPublic(t *testing.T) {
	engine, _ := newTestRouter(t, testConfig(), upstreamOK())

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRouter_AgentAreaRequiresSession(t *testing.T) {
	engine, _ := newTestRouter(t, testConfig(), upstreamOK())

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/agent/stats", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestRouter_AgentAreaRejectsAffiliates(t *testing.T) {
	engine, sessions := newTestRouter(t, testConfig(), upstreamOK())
	require.NoError(t, sessions.Set(identity.TokenPair{AccessToken: "acc"}, identity.RoleAffiliate))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/agent/stats", nil))

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")
}

func TestRouter_AffiliateAreaServesItsRole(t *testing.T) {
	engine, sessions := newTestRouter(t, testConfig(), upstreamOK())
	require.NoError(t, sessions.Set(identity.TokenPair{AccessToken: "acc"}, identity.RoleAffiliate))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/affiliate/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestRouter_DemoHiddenWhenDisabled(t *testing.T) {
	engine, _ := newTestRouter(t, testConfig(), upstreamOK())

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/demo/activity", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AuthRateLimitThrottlesLogin(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.AuthRateLimitEnabled = true
	cfg.HTTP.AuthRateLimitRequests = 2
	cfg.HTTP.AuthRateLimitWindow = time.Minute

	engine, _ := newTestRouter(t, cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"detail":"Invalid credentials"}`))
	}))

	var last int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"email":"a@b.test","password":"wrong-pass"}`))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(rec, req)
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
