package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexusgg/partner-portal/internal/domain/identity"
	"github.com/nexusgg/partner-portal/internal/domain/shared"
	"github.com/nexusgg/partner-portal/internal/infrastructure/notify"
	"github.com/nexusgg/partner-portal/internal/infrastructure/session"
	"github.com/nexusgg/partner-portal/internal/platform"
	"github.com/nexusgg/partner-portal/internal/query"
)

func newTestService(t *testing.T, handler http.Handler) (*PortalService, *notify.Recorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sessions := session.NewMemoryStore()
	require.NoError(t, sessions.Set(identity.TokenPair{AccessToken: "acc"}, identity.RoleAgent))

	recorder := notify.NewRecorder()
	client := platform.New(platform.Config{BaseURL: srv.URL}, sessions, recorder, zap.NewNop())

	cache, err := query.New(64)
	require.NoError(t, err)

	svc := NewPortalService(platform.NewAgentService(client), cache, recorder,
		query.Staleness{Default: time.Minute, Wallet: time.Minute}, zap.NewNop())
	return svc, recorder
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestPortalService_StatsAreCached(t *testing.T) {
	var calls atomic.Int64
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{
			"total_users": 12, "active_users": 9,
		})
	}))

	first, err := svc.Stats(context.Background())
	require.NoError(t, err)
	second, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), calls.Load())
}

func TestPortalService_RevenuePeriodsCacheIndependently(t *testing.T) {
	var calls atomic.Int64
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, []map[string]any{
			{"date": "2026-08-01", "revenue": "120.50"},
		})
	}))

	points, err := svc.RevenueAnalytics(context.Background(), "7d")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "2026-08-01", points[0].Date.Format(time.DateOnly))

	_, err = svc.RevenueAnalytics(context.Background(), "30d")
	require.NoError(t, err)
	_, err = svc.RevenueAnalytics(context.Background(), "7d")
	require.NoError(t, err)

	assert.Equal(t, int64(2), calls.Load(), "one upstream call per period")
}

func TestPortalService_AddUserInvalidatesUserPages(t *testing.T) {
	var listCalls atomic.Int64
	svc, recorder := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusOK, map[string]any{
				"id": 3, "email": "new@player.test", "is_active": true,
			})
			return
		}
		listCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]any{{"id": 1, "email": "one@player.test", "is_active": true}},
			"meta":  map[string]any{"page": 1, "size": 20, "total": 1},
		})
	}))

	page := shared.Page{Number: 1, Size: 20}
	_, err := svc.Users(context.Background(), page)
	require.NoError(t, err)
	_, err = svc.Users(context.Background(), page)
	require.NoError(t, err)
	require.Equal(t, int64(1), listCalls.Load())

	_, err = svc.AddUser(context.Background(), platform.AddUserInput{
		Email: "new@player.test", Username: "newplayer", Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, recorder.CountClass(notify.ClassSuccess))

	// The cached page is stale now; the next read reconciles
	_, err = svc.Users(context.Background(), page)
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return listCalls.Load() == 2
	}, time.Second, time.Millisecond)
}

func TestPortalService_PayoutRejectedLocallyNeverReachesUpstream(t *testing.T) {
	var calls atomic.Int64
	svc, recorder := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{})
	}))

	_, err := svc.RequestPayout(context.Background(), platform.PayoutInput{
		Amount: decimal.NewFromInt(-5),
		Method: "crypto",
	})
	require.Error(t, err)

	var perr *platform.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, platform.KindValidation, perr.Kind)
	assert.Equal(t, int64(0), calls.Load())
	assert.Zero(t, recorder.CountClass(notify.ClassSuccess))
}

func TestPortalService_RequestPayoutRefreshesWallet(t *testing.T) {
	var walletCalls atomic.Int64
	svc, recorder := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			writeJSON(w, http.StatusOK, map[string]any{
				"id": 1, "amount": "50.00", "method": "crypto", "status": "PENDING",
			})
		default:
			walletCalls.Add(1)
			writeJSON(w, http.StatusOK, map[string]any{
				"commission_balance": "120.00", "currency": "USD",
			})
		}
	}))

	_, err := svc.Wallet(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), walletCalls.Load())

	p, err := svc.RequestPayout(context.Background(), platform.PayoutInput{
		Amount:        decimal.NewFromInt(50),
		Method:        "crypto",
		WalletAddress: "0xabc",
	})
	require.NoError(t, err)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 1, recorder.CountClass(notify.ClassSuccess))

	_, err = svc.Wallet(context.Background())
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return walletCalls.Load() == 2
	}, time.Second, time.Millisecond)
}

func TestPortalService_ExportBypassesCache(t *testing.T) {
	var calls atomic.Int64
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "csv", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("id,amount\n1,10.00\n"))
	}))

	for i := 0; i < 2; i++ {
		data, err := svc.ExportCommissionsCSV(context.Background())
		require.NoError(t, err)
		assert.Contains(t, string(data), "id,amount")
	}
	assert.Equal(t, int64(2), calls.Load(), "exports always hit the platform")
}

func TestPortalService_RejectPayoutRequiresReason(t *testing.T) {
	var calls atomic.Int64
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{})
	}))

	_, err := svc.RejectPayout(context.Background(), 5, platform.RejectPayoutInput{})
	require.Error(t, err)
	assert.Equal(t, int64(0), calls.Load())
}
