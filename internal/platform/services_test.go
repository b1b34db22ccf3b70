package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexusgg/partner-portal/internal/domain/identity"
	"github.com/nexusgg/partner-portal/internal/infrastructure/notify"
	"github.com/nexusgg/partner-portal/internal/infrastructure/session"
)

func tokenPair(access string) identity.TokenPair {
	return identity.TokenPair{AccessToken: access, RefreshToken: "refresh-" + access}
}

func TestAuthService_Login(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/auth/login", r.URL.Path)

		var in LoginInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "agent@nxs.gg", in.Email)

		_ = json.NewEncoder(w).Encode(AuthResult{
			AccessToken:  "acc",
			RefreshToken: "ref",
			TokenType:    "bearer",
			User:         identity.User{ID: 7, Email: in.Email, Role: identity.RoleAgent, IsActive: true},
		})
	})
	client, _, _ := newTestClient(t, handler)
	svc := NewAuthService(client)

	result, err := svc.Login(context.Background(), LoginInput{Email: "agent@nxs.gg", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "acc", result.TokenPair().AccessToken)
	assert.Equal(t, identity.RoleAgent, result.User.Role)
}

func TestAuthService_LoginRejectsBadInputLocally(t *testing.T) {
	var calls atomic.Int32
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	svc := NewAuthService(client)

	_, err := svc.Login(context.Background(), LoginInput{Email: "not-an-email", Password: "x"})
	require.Error(t, err)

	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, KindValidation, pErr.Kind)
	assert.Zero(t, calls.Load(), "invalid input must never hit the wire")
}

func TestPayoutInput_Validate(t *testing.T) {
	valid := PayoutInput{
		Amount:        decimal.NewFromInt(50),
		Method:        "crypto",
		WalletAddress: "0xabc",
	}

	t.Run("accepts a positive amount", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		in := valid
		in.Amount = decimal.Zero
		err := in.Validate()
		var pErr *Error
		require.ErrorAs(t, err, &pErr)
		assert.Equal(t, KindValidation, pErr.Kind)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		in := valid
		in.Amount = decimal.NewFromInt(-10)
		assert.Error(t, in.Validate())
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		in := valid
		in.Method = "carrier_pigeon"
		assert.Error(t, in.Validate())
	})

	t.Run("requires a destination", func(t *testing.T) {
		in := valid
		in.WalletAddress = ""
		in.Destination = ""
		assert.Error(t, in.Validate())
	})
}

func TestAgentService_RequestPayoutRejectedBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	client, _, recorder := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	svc := NewAgentService(client)

	_, err := svc.RequestPayout(context.Background(), PayoutInput{
		Amount: decimal.NewFromInt(-5),
		Method: "crypto",
	})
	require.Error(t, err)
	assert.Zero(t, calls.Load(), "rejected payout must not issue a request")
	assert.Empty(t, recorder.All(), "client-side rejection is not a failed call")
}

func TestAffiliateService_CreateLinkScenario(t *testing.T) {
	var created atomic.Bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/affiliate/links":
			var in CreateLinkInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "https://x.test", in.TargetURL)
			assert.Equal(t, "promo1", in.CampaignName)
			created.Store(true)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":            101,
				"slug":          "k7Qp2",
				"campaign_name": in.CampaignName,
				"target_url":    in.TargetURL,
				"short_link":    "https://nxs.gg/a/k7Qp2",
			})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/affiliate/links":
			_ = json.NewEncoder(w).Encode([]map[string]any{{
				"id":           101,
				"slug":         "k7Qp2",
				"short_link":   "https://nxs.gg/a/k7Qp2",
				"total_clicks": 0,
			}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	client, _, _ := newTestClient(t, handler)
	svc := NewAffiliateService(client)

	link, err := svc.CreateLink(context.Background(), CreateLinkInput{
		TargetURL:    "https://x.test",
		CampaignName: "promo1",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://nxs.gg/a/k7Qp2", link.ShortLink)

	links, err := svc.ListLinks(context.Background())
	require.NoError(t, err)
	require.True(t, created.Load())
	require.Len(t, links, 1)
	assert.Equal(t, int64(0), links[0].TotalClicks)
}

func TestAgentService_ExportCommissionsCSV(t *testing.T) {
	csv := "period,user,amount\n2026-07,player1,12.50\n"
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/agent/commissions/export", r.URL.Path)
		require.Equal(t, "csv", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(csv))
	})
	client, _, _ := newTestClient(t, handler)
	svc := NewAgentService(client)

	data, err := svc.ExportCommissionsCSV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, csv, string(data))
}

func TestServicesShareOneEgressPipeline(t *testing.T) {
	// All services ride the same client; a failure in any of them produces
	// one notification through the same interceptor.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	recorder := notify.NewRecorder()
	client := New(Config{BaseURL: srv.URL}, session.NewMemoryStore(), recorder, zap.NewNop())

	_, err := NewAgentService(client).GetStats(context.Background())
	require.Error(t, err)
	_, err = NewAffiliateService(client).GetStats(context.Background())
	require.Error(t, err)

	assert.Equal(t, 2, recorder.CountClass(notify.ClassServerError))
}
