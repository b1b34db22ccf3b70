package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexusgg/partner-portal/internal/infrastructure/notify"
	"github.com/nexusgg/partner-portal/internal/infrastructure/session"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.MemoryStore, *notify.Recorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sessions := session.NewMemoryStore()
	recorder := notify.NewRecorder()
	client := New(Config{BaseURL: srv.URL}, sessions, recorder, zap.NewNop())
	return client, sessions, recorder
}

func TestClient_BearerAttachment(t *testing.T) {
	var gotAuth atomic.Value
	client, sessions, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))

	t.Run("no token means no header", func(t *testing.T) {
		var out map[string]any
		require.NoError(t, client.Get(context.Background(), "/v1/ping", nil, &out))
		assert.Equal(t, "", gotAuth.Load())
	})

	t.Run("token present is sent as bearer", func(t *testing.T) {
		require.NoError(t, sessions.Set(tokenPair("tok-123"), "AGENT"))

		var out map[string]any
		require.NoError(t, client.Get(context.Background(), "/v1/ping", nil, &out))
		assert.Equal(t, "Bearer tok-123", gotAuth.Load())
	})

	t.Run("cleared session sends unauthenticated again", func(t *testing.T) {
		require.NoError(t, sessions.Clear())

		var out map[string]any
		require.NoError(t, client.Get(context.Background(), "/v1/ping", nil, &out))
		assert.Equal(t, "", gotAuth.Load())
	})
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantKind  Kind
		wantClass notify.Class
		wantMsg   string
	}{
		{
			name:      "401 is session expired",
			status:    http.StatusUnauthorized,
			body:      `{"detail": "Could not validate credentials"}`,
			wantKind:  KindSessionExpired,
			wantClass: notify.ClassSessionExpired,
			wantMsg:   "Could not validate credentials",
		},
		{
			name:      "422 with array detail is validation",
			status:    http.StatusUnprocessableEntity,
			body:      `{"detail": [{"loc": ["body", "email"], "msg": "value is not a valid email address", "type": "value_error.email"}]}`,
			wantKind:  KindValidation,
			wantClass: notify.ClassValidationError,
			wantMsg:   "body.email: value is not a valid email address",
		},
		{
			name:      "other 4xx is a request error with detail text",
			status:    http.StatusConflict,
			body:      `{"detail": "Campaign name already in use"}`,
			wantKind:  KindClient,
			wantClass: notify.ClassRequestError,
			wantMsg:   "Campaign name already in use",
		},
		{
			name:      "4xx message field is used when detail is absent",
			status:    http.StatusBadRequest,
			body:      `{"message": "Malformed payload"}`,
			wantKind:  KindClient,
			wantClass: notify.ClassRequestError,
			wantMsg:   "Malformed payload",
		},
		{
			name:      "4xx without any body falls back to generic text",
			status:    http.StatusBadRequest,
			body:      ``,
			wantKind:  KindClient,
			wantClass: notify.ClassRequestError,
			wantMsg:   "Request failed. Please try again.",
		},
		{
			name:      "500 never exposes internals",
			status:    http.StatusInternalServerError,
			body:      `{"detail": "pq: relation \"wallets\" does not exist"}`,
			wantKind:  KindServer,
			wantClass: notify.ClassServerError,
			wantMsg:   "Something went wrong on our side. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _, recorder := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			var out map[string]any
			err := client.Get(context.Background(), "/v1/thing", nil, &out)
			require.Error(t, err)

			var pErr *Error
			require.True(t, errors.As(err, &pErr), "callers must be able to branch on *Error")
			assert.Equal(t, tt.wantKind, pErr.Kind)
			assert.Equal(t, tt.status, pErr.StatusCode)
			assert.Equal(t, tt.wantMsg, pErr.Message)

			// Exactly one notification per failed call
			sent := recorder.All()
			require.Len(t, sent, 1)
			assert.Equal(t, tt.wantClass, sent[0].Class)
			assert.Equal(t, tt.wantMsg, sent[0].Message)
		})
	}
}

func TestClient_ValidationFlatteningOrder(t *testing.T) {
	body := `{"detail": [
		{"loc": ["body", "amount"], "msg": "must be greater than 0", "type": "value_error"},
		{"loc": ["body", "method"], "msg": "field required", "type": "value_error.missing"},
		{"loc": ["query", "page", 0], "msg": "invalid integer", "type": "type_error"}
	]}`
	client, _, recorder := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(body))
	}))

	err := client.Post(context.Background(), "/v1/agent/payouts", map[string]any{}, &map[string]any{})
	require.Error(t, err)

	want := "body.amount: must be greater than 0\n" +
		"body.method: field required\n" +
		"query.page.0: invalid integer"
	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, want, pErr.Message)
	require.Len(t, recorder.All(), 1)
	assert.Equal(t, want, recorder.All()[0].Message)
}

func TestClient_NetworkFailure(t *testing.T) {
	sessions := session.NewMemoryStore()
	recorder := notify.NewRecorder()
	// Nothing listens on this address
	client := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: 500 * time.Millisecond}, sessions, recorder, zap.NewNop())

	var out map[string]any
	err := client.Get(context.Background(), "/v1/ping", nil, &out)
	require.Error(t, err)

	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, KindNetwork, pErr.Kind)
	assert.Zero(t, pErr.StatusCode)
	assert.NotNil(t, pErr.Unwrap(), "transport error must stay reachable")

	require.Len(t, recorder.All(), 1)
	assert.Equal(t, notify.ClassNetworkError, recorder.All()[0].Class)
	assert.Equal(t, notify.TitleNetworkError, recorder.All()[0].Title)
}

func TestClient_TimeoutClassifiedAsNetwork(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	srv := httptest.NewServer(slow)
	t.Cleanup(srv.Close)

	client := New(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond},
		session.NewMemoryStore(), notify.NewRecorder(), zap.NewNop())

	err := client.Get(context.Background(), "/v1/slow", nil, &map[string]any{})
	var pErr *Error
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, KindNetwork, pErr.Kind)
}
